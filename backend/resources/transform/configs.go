package transform

import (
	"encoding/json"

	"github.com/harborview/app/backend/resources/types"
)

// ConfigMap builds a configmap row.
func ConfigMap(raw json.RawMessage) (types.ConfigMapRow, []string) {
	f := parse(raw)
	row := types.ConfigMapRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Keys:      f.intVal("keys"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// Secret builds a secret row. Only metadata crosses this boundary.
func Secret(raw json.RawMessage) (types.SecretRow, []string) {
	f := parse(raw)
	row := types.SecretRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Type:      f.strOr("type", "Opaque"),
		Keys:      f.intVal("keys"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}
