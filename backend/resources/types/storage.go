package types

// PersistentVolumeRow is the overview table row for a persistent volume.
type PersistentVolumeRow struct {
	Name          string `json:"name"`
	Capacity      string `json:"capacity"`
	AccessModes   string `json:"accessModes"` // e.g. "RWO"
	ReclaimPolicy string `json:"reclaimPolicy"`
	Status        string `json:"status"`
	Claim         string `json:"claim"` // "namespace/name" of the bound claim
	StorageClass  string `json:"storageClass"`
	Age           string `json:"age"`
	CreatedAt     int64  `json:"createdAt"`
}

// PersistentVolumeClaimRow is the overview table row for a PVC.
type PersistentVolumeClaimRow struct {
	Namespace    string `json:"namespace"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Volume       string `json:"volume"`
	Capacity     string `json:"capacity"`
	AccessModes  string `json:"accessModes"`
	StorageClass string `json:"storageClass"`
	Age          string `json:"age"`
	CreatedAt    int64  `json:"createdAt"`
}
