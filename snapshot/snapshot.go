package snapshot

import (
	"sort"

	"github.com/byte4ever/integrity_check/digester"
)

// Path identifies a tracked file exactly as it was scanned.
type Path string

// Snapshot maps every tracked file to its digest at a point
// in time.
type Snapshot map[Path]digester.Digest

// Paths returns the tracked paths in lexical order.
func (s Snapshot) Paths() []Path {
	paths := make([]Path, 0, len(s))
	for pa := range s {
		paths = append(paths, pa)
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i] < paths[j]
	})

	return paths
}

// Equal reports whether s and other track the same paths
// with the same digests.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}

	for pa, dg := range s {
		od, ok := other[pa]
		if !ok || od != dg {
			return false
		}
	}

	return true
}
