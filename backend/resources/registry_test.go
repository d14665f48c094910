package resources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupFindsEveryCatalogEntry(t *testing.T) {
	for _, d := range Catalog {
		found, ok := Lookup(d.WireName)
		require.True(t, ok, d.WireName)
		require.Equal(t, d, found)
	}
}

func TestLookupUnknownKind(t *testing.T) {
	_, ok := Lookup("widgets")
	require.False(t, ok)
}

func TestCatalogWireNamesUnique(t *testing.T) {
	seen := make(map[string]string)
	for _, d := range Catalog {
		previous, dup := seen[d.WireName]
		require.False(t, dup, "wire name %s used by %s and %s", d.WireName, previous, d.Kind)
		seen[d.WireName] = d.Kind
	}
}

func TestClusterScopedKinds(t *testing.T) {
	for _, wireName := range []string{"nodes", "namespaces", "persistentvolumes"} {
		d, ok := Lookup(wireName)
		require.True(t, ok)
		require.True(t, d.ClusterScoped, wireName)
	}
	pods, _ := Lookup("pods")
	require.False(t, pods.ClusterScoped)
}

func TestNamespacedKey(t *testing.T) {
	require.Equal(t, "default/api-0", NamespacedKey("default", "api-0"))
}
