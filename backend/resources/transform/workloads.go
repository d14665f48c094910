package transform

import (
	"encoding/json"

	"github.com/harborview/app/backend/resources/types"
)

// Pod builds a pod row, reporting the payload fields it could not read.
func Pod(raw json.RawMessage) (types.PodRow, []string) {
	f := parse(raw)
	row := types.PodRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Ready:     f.strOr("ready", "0/0"),
		Phase:     f.strOr("phase", "Unknown"),
		Restarts:  f.intVal("restarts"),
		Node:      f.str("node"),
		CPU:       f.quantity("cpu"),
		Memory:    f.quantity("memory"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// Deployment builds a deployment row.
func Deployment(raw json.RawMessage) (types.DeploymentRow, []string) {
	f := parse(raw)
	row := types.DeploymentRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Ready:     f.strOr("ready", "0/0"),
		UpToDate:  f.intVal("upToDate"),
		Available: f.intVal("available"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// StatefulSet builds a statefulset row.
func StatefulSet(raw json.RawMessage) (types.StatefulSetRow, []string) {
	f := parse(raw)
	row := types.StatefulSetRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Ready:     f.strOr("ready", "0/0"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// DaemonSet builds a daemonset row.
func DaemonSet(raw json.RawMessage) (types.DaemonSetRow, []string) {
	f := parse(raw)
	row := types.DaemonSetRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Desired:   f.intVal("desired"),
		Current:   f.intVal("current"),
		Ready:     f.intVal("ready"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}
