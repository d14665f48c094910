package types

// ConfigMapRow is the overview table row for a configmap.
type ConfigMapRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Keys      int    `json:"keys"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}

// SecretRow is the overview table row for a secret. Values never leave the
// backend; only key counts and the type are surfaced.
type SecretRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Keys      int    `json:"keys"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}
