package transform

import (
	"encoding/json"

	"github.com/harborview/app/backend/resources/types"
)

// Service builds a service row.
func Service(raw json.RawMessage) (types.ServiceRow, []string) {
	f := parse(raw)
	row := types.ServiceRow{
		Namespace:  f.str("namespace"),
		Name:       f.str("name"),
		Type:       f.strOr("type", "ClusterIP"),
		ClusterIP:  f.str("clusterIP"),
		ExternalIP: f.optStr("externalIP"),
		Ports:      f.str("ports"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// Endpoints builds an endpoints row.
func Endpoints(raw json.RawMessage) (types.EndpointsRow, []string) {
	f := parse(raw)
	row := types.EndpointsRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Endpoints: f.str("endpoints"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// Ingress builds an ingress row.
func Ingress(raw json.RawMessage) (types.IngressRow, []string) {
	f := parse(raw)
	row := types.IngressRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Class:     f.str("class"),
		Hosts:     f.str("hosts"),
		Address:   f.optStr("address"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}

// VirtualService builds an Istio virtual service row.
func VirtualService(raw json.RawMessage) (types.VirtualServiceRow, []string) {
	f := parse(raw)
	row := types.VirtualServiceRow{
		Namespace: f.str("namespace"),
		Name:      f.str("name"),
		Gateways:  f.str("gateways"),
		Hosts:     f.str("hosts"),
	}
	row.CreatedAt, row.Age = f.created("createdAt")
	return row, f.missing
}
