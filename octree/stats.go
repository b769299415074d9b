package octree

import (
	"fmt"
	"time"
)

// Stats describes the work performed by a frustum traversal.
type Stats struct {
	// Entities that were reinserted because they were invalidated.
	Reinserted int

	// Node bounds and entity boxes classified against the shape.
	NodesTested    int
	EntitiesTested int

	// Subtrees rejected as a whole.
	SubtreesCulled int

	// Plane evaluations; only counted for frustum tests.
	PlanesTested int

	// Callback counts.
	Inside  int
	Outside int

	Duration time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"reinserted: %d, nodes tested: %d, entities tested: %d, subtrees culled: %d, planes tested: %d, inside: %d, outside: %d, time: %s",
		s.Reinserted, s.NodesTested, s.EntitiesTested, s.SubtreesCulled, s.PlanesTested, s.Inside, s.Outside, s.Duration,
	)
}

// Occupancy returns the number of entities owned by nodes at each depth.
func (t *Tree[E]) Occupancy() []int {
	out := make([]int, t.maxDepth+1)
	for _, idx := range t.entityToOctant {
		out[t.nodes[idx].depth]++
	}
	return out
}
