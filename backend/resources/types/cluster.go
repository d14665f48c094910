package types

// NodeRow is the overview table row for a node.
type NodeRow struct {
	Name           string `json:"name"`
	Status         string `json:"status"` // "Ready", "NotReady", "Ready,SchedulingDisabled"
	Roles          string `json:"roles"`
	Version        string `json:"version"`
	CPUCapacity    string `json:"cpuCapacity"`
	MemoryCapacity string `json:"memoryCapacity"`
	Age            string `json:"age"`
	CreatedAt      int64  `json:"createdAt"`
}

// NamespaceRow is the overview table row for a namespace.
type NamespaceRow struct {
	Name      string `json:"name"`
	Phase     string `json:"phase"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}

// ResourceQuotaRow is the overview table row for a resource quota.
type ResourceQuotaRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	CPUUsed   string `json:"cpuUsed"`
	CPUHard   string `json:"cpuHard"`
	MemUsed   string `json:"memUsed"`
	MemHard   string `json:"memHard"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}
