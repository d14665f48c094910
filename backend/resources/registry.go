// Package resources catalogs the resource kinds the overview surfaces.
package resources

// Descriptor ties one resource kind to its stream and snapshot endpoints.
type Descriptor struct {
	// Kind is the display name, e.g. "Pod".
	Kind string
	// WireName is the canonical plural used in stream event types and
	// router registration, e.g. "pods".
	WireName string
	// Path is the snapshot list endpoint.
	Path string
	// ClusterScoped marks kinds without a namespace.
	ClusterScoped bool
}

// Catalog lists every kind the overview channel carries. Order matches the
// sidebar grouping: workloads, cluster, network, storage, config.
var Catalog = []Descriptor{
	{Kind: "Pod", WireName: "pods", Path: "/api/v1/pods"},
	{Kind: "Deployment", WireName: "deployments", Path: "/api/v1/deployments"},
	{Kind: "StatefulSet", WireName: "statefulsets", Path: "/api/v1/statefulsets"},
	{Kind: "DaemonSet", WireName: "daemonsets", Path: "/api/v1/daemonsets"},
	{Kind: "Node", WireName: "nodes", Path: "/api/v1/nodes", ClusterScoped: true},
	{Kind: "Namespace", WireName: "namespaces", Path: "/api/v1/namespaces", ClusterScoped: true},
	{Kind: "ResourceQuota", WireName: "resource_quotas", Path: "/api/v1/resourcequotas"},
	{Kind: "Service", WireName: "services", Path: "/api/v1/services"},
	{Kind: "Endpoints", WireName: "endpoints", Path: "/api/v1/endpoints"},
	{Kind: "Ingress", WireName: "ingresses", Path: "/api/v1/ingresses"},
	{Kind: "VirtualService", WireName: "virtualservices", Path: "/api/v1/virtualservices"},
	{Kind: "PersistentVolume", WireName: "persistentvolumes", Path: "/api/v1/persistentvolumes", ClusterScoped: true},
	{Kind: "PersistentVolumeClaim", WireName: "persistentvolumeclaims", Path: "/api/v1/persistentvolumeclaims"},
	{Kind: "ConfigMap", WireName: "configmaps", Path: "/api/v1/configmaps"},
	{Kind: "Secret", WireName: "secrets", Path: "/api/v1/secrets"},
}

// Lookup finds a descriptor by wire name.
func Lookup(wireName string) (Descriptor, bool) {
	for _, d := range Catalog {
		if d.WireName == wireName {
			return d, true
		}
	}
	return Descriptor{}, false
}

// NamespacedKey builds the store key for a namespaced row.
func NamespacedKey(namespace, name string) string {
	return namespace + "/" + name
}
