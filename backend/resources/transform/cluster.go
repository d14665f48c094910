package transform

import (
	"encoding/json"

	"github.com/harborview/app/backend/resources/types"
)

// Node builds a node row.
func Node(raw json.RawMessage) (types.NodeRow, []string) {
	f := parse(raw)
	row := types.NodeRow{
		Name:           f.str("name"),
		Status:         f.strOr("status", "Unknown"),
		Roles:          f.str("roles"),
		Version:        f.str("version"),
		CPUCapacity:    f.quantity("cpuCapacity"),
		MemoryCapacity: f.quantity("memoryCapacity"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// Namespace builds a namespace row.
func Namespace(raw json.RawMessage) (types.NamespaceRow, []string) {
	f := parse(raw)
	row := types.NamespaceRow{
		Name:  f.str("name"),
		Phase: f.strOr("phase", "Unknown"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// ResourceQuota builds a resource quota row.
func ResourceQuota(raw json.RawMessage) (types.ResourceQuotaRow, []string) {
	f := parse(raw)
	row := types.ResourceQuotaRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		CPUUsed:   f.quantity("cpuUsed"),
		CPUHard:   f.quantity("cpuHard"),
		MemUsed:   f.quantity("memUsed"),
		MemHard:   f.quantity("memHard"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}
