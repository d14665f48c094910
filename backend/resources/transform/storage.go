package transform

import (
	"encoding/json"

	"github.com/harborview/app/backend/resources/types"
)

// PersistentVolume builds a persistent volume row.
func PersistentVolume(raw json.RawMessage) (types.PersistentVolumeRow, []string) {
	f := parse(raw)
	row := types.PersistentVolumeRow{
		Name:          f.str("name"),
		Capacity:      f.quantity("capacity"),
		AccessModes:   f.str("accessModes"),
		ReclaimPolicy: f.str("reclaimPolicy"),
		Status:        f.strOr("status", "Unknown"),
		Claim:         f.optStr("claim"),
		StorageClass:  f.str("storageClass"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// PersistentVolumeClaim builds a PVC row.
func PersistentVolumeClaim(raw json.RawMessage) (types.PersistentVolumeClaimRow, []string) {
	f := parse(raw)
	row := types.PersistentVolumeClaimRow{
		Namespace:    f.str("namespace"),
		Name:         f.str("name"),
		Status:       f.strOr("status", "Unknown"),
		Volume:       f.optStr("volume"),
		Capacity:     f.quantity("capacity"),
		AccessModes:  f.str("accessModes"),
		StorageClass: f.str("storageClass"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}
