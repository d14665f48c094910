package types

// ServiceRow is the overview table row for a service.
type ServiceRow struct {
	Namespace  string `json:"namespace"`
	Name       string `json:"name"`
	Type       string `json:"type"` // ClusterIP, NodePort, LoadBalancer, ExternalName
	ClusterIP  string `json:"clusterIP"`
	ExternalIP string `json:"externalIP,omitempty"`
	Ports      string `json:"ports"` // e.g. "80/TCP,443/TCP"
	Age        string `json:"age"`
	CreatedAt  int64  `json:"createdAt"`
}

// EndpointsRow is the overview table row for an endpoints object.
type EndpointsRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Endpoints string `json:"endpoints"` // e.g. "10.0.0.4:8080,10.0.0.5:8080"
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}

// IngressRow is the overview table row for an ingress.
type IngressRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Hosts     string `json:"hosts"`
	Address   string `json:"address"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}

// VirtualServiceRow is the overview table row for an Istio virtual service.
type VirtualServiceRow struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Gateways  string `json:"gateways"`
	Hosts     string `json:"hosts"`
	Age       string `json:"age"`
	CreatedAt int64  `json:"createdAt"`
}
