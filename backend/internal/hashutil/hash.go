// Package hashutil provides the stable identity hash used when a numeric id
// is derived from a resource key (chart series colors, row identity in the
// rendering layer).
package hashutil

import "hash/fnv"

// HashKey maps a derived resource key to a stable 32-bit value. Callers that
// need a numeric id call this explicitly; behavior is never attached to the
// string type itself.
func HashKey(s string) uint32 {
	h := fnv.New32a()
	// fnv hash writes never fail.
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
