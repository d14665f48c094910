package types

// PodRow is the overview table row for a pod.
type PodRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Ready     string `json:"ready"` // e.g. "2/2"
	Phase     string `json:"phase"`
	Restarts  int    `json:"restarts"`
	Node      string `json:"node"`
	CPU       string `json:"cpu"`
	Memory    string `json:"memory"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}

// DeploymentRow is the overview table row for a deployment.
type DeploymentRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Ready     string `json:"ready"` // "replicas ready/desired"
	UpToDate  int    `json:"upToDate"`
	Available int    `json:"available"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}

// StatefulSetRow is the overview table row for a statefulset.
type StatefulSetRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Ready     string `json:"ready"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}

// DaemonSetRow is the overview table row for a daemonset.
type DaemonSetRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Desired   int    `json:"desired"`
	Current   int    `json:"current"`
	Ready     int    `json:"ready"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}
