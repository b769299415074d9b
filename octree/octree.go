// Package octree implements a loose spatial index used to cull entities
// against a view frustum. Nodes live in a flat arena and refer to each
// other by index; the root is always node 0.
package octree

import (
	"time"

	"github.com/achilleasa/octocull/log"
	"github.com/achilleasa/octocull/shape"
	"github.com/achilleasa/octocull/types"
	"github.com/chewxy/math32"
)

const (
	rootIndex int32 = 0
	noIndex   int32 = -1
)

// BoxFunc returns the world-space box of an entity. The second result is
// false for entities without a bounding volume; such entities are never
// indexed.
type BoxFunc[E comparable] func(E) (shape.Box, bool)

// Callback is invoked once per entity by TestFrustum.
type Callback[E comparable] func(E)

type entry[E comparable] struct {
	entity E
	box    shape.Box
}

type node[E comparable] struct {
	bounds shape.Box
	depth  uint
	parent int32

	// Index of the first of 8 contiguous children or noIndex while the
	// node is unsplit.
	firstChild int32

	// Entities owned by this node.
	content []entry[E]

	// Entities owned by any descendant of this node.
	childContent []E
}

func (n *node[E]) split() bool {
	return n.firstChild != noIndex
}

// Tree is an octree over entities of type E. It is not safe for concurrent use.
type Tree[E comparable] struct {
	logger log.Logger

	extent   float32
	maxDepth uint
	boxOf    BoxFunc[E]

	nodes []node[E]

	// Owning node index for every indexed entity.
	entityToOctant map[E]int32

	// Entities whose boxes may be stale since the last traversal.
	invalidated map[E]struct{}

	stats Stats
}

// New creates an octree whose root spans [-extent, extent] on every axis and
// that never subdivides deeper than maxDepth.
func New[E comparable](extent float32, maxDepth uint, boxOf BoxFunc[E]) *Tree[E] {
	t := &Tree[E]{
		logger:         log.New("octree"),
		extent:         extent,
		maxDepth:       maxDepth,
		boxOf:          boxOf,
		nodes:          make([]node[E], 0, 9),
		entityToOctant: make(map[E]int32),
		invalidated:    make(map[E]struct{}),
	}

	t.nodes = append(t.nodes, node[E]{
		bounds:     shape.NewBox(types.Splat3(-extent), types.Splat3(extent)),
		parent:     noIndex,
		firstChild: noIndex,
	})

	t.logger.Infof("created octree with extent %.1f and max depth %d", extent, maxDepth)
	return t
}

// Extent returns the half size of the root node.
func (t *Tree[E]) Extent() float32 {
	return t.extent
}

// MaxDepth returns the deepest level the tree may subdivide to.
func (t *Tree[E]) MaxDepth() uint {
	return t.maxDepth
}

// Len returns the number of indexed entities.
func (t *Tree[E]) Len() int {
	return len(t.entityToOctant)
}

// NodeCount returns the number of allocated nodes.
func (t *Tree[E]) NodeCount() int {
	return len(t.nodes)
}

// Contains returns true if e is indexed.
func (t *Tree[E]) Contains(e E) bool {
	_, exists := t.entityToOctant[e]
	return exists
}

// Octant returns the bounds and depth of the node that owns e.
func (t *Tree[E]) Octant(e E) (shape.Box, uint, bool) {
	idx, exists := t.entityToOctant[e]
	if !exists {
		return shape.Box{}, 0, false
	}
	return t.nodes[idx].bounds, t.nodes[idx].depth, true
}

// Depth returns the depth of the node that owns e.
func (t *Tree[E]) Depth(e E) (uint, bool) {
	_, depth, exists := t.Octant(e)
	return depth, exists
}

// EdgeLength returns the edge length of nodes at the given depth.
func (t *Tree[E]) EdgeLength(depth uint) float32 {
	return 2 * t.extent / float32(uint64(1)<<depth)
}

// ComputeDepth returns the depth an entity with the given box is inserted
// at: floor(log2(extent / size)) clamped to [0, maxDepth] where size is the
// largest box dimension.
func (t *Tree[E]) ComputeDepth(box shape.Box) uint {
	size := box.Size().MaxComponent()
	if size <= 0 {
		return t.maxDepth
	}

	depth := math32.Floor(math32.Log2(t.extent / size))
	if depth <= 0 {
		return 0
	}
	if depth >= float32(t.maxDepth) {
		return t.maxDepth
	}
	return uint(depth)
}

// Insert indexes e. Entities that are already indexed or that have no
// bounding volume are ignored.
func (t *Tree[E]) Insert(e E) {
	if _, exists := t.entityToOctant[e]; exists {
		return
	}

	box, ok := t.boxOf(e)
	if !ok {
		return
	}

	targetDepth := t.ComputeDepth(box)
	idx := rootIndex
	for t.nodes[idx].depth < targetDepth {
		if !t.nodes[idx].split() {
			t.splitNode(idx)
		}

		next := t.intersectingChild(idx, box)
		if next == noIndex {
			break
		}
		idx = next
	}

	t.nodes[idx].content = append(t.nodes[idx].content, entry[E]{entity: e, box: box})
	t.entityToOctant[e] = idx
	for p := t.nodes[idx].parent; p != noIndex; p = t.nodes[p].parent {
		t.nodes[p].childContent = append(t.nodes[p].childContent, e)
	}
}

// Remove drops e from the index. Removing an entity that is not indexed is
// a no-op.
func (t *Tree[E]) Remove(e E) {
	idx, exists := t.entityToOctant[e]
	if !exists {
		return
	}

	n := &t.nodes[idx]
	for i := range n.content {
		if n.content[i].entity == e {
			last := len(n.content) - 1
			n.content[i] = n.content[last]
			n.content[last] = entry[E]{}
			n.content = n.content[:last]
			break
		}
	}

	for p := n.parent; p != noIndex; p = t.nodes[p].parent {
		t.nodes[p].childContent = removeEntity(t.nodes[p].childContent, e)
	}

	delete(t.entityToOctant, e)
	delete(t.invalidated, e)
}

// Invalidate flags e as possibly stale. Its membership is refreshed at the
// start of the next TestFrustum call.
func (t *Tree[E]) Invalidate(e E) {
	if _, exists := t.entityToOctant[e]; !exists {
		return
	}
	t.invalidated[e] = struct{}{}
}

// Stats returns the statistics collected by the last TestFrustum call.
func (t *Tree[E]) Stats() Stats {
	return t.stats
}

// TestFrustum reinserts invalidated entities and then classifies every
// indexed entity against s, invoking inside for entities inside or around
// s and outside for the rest. Each entity receives exactly one callback.
func (t *Tree[E]) TestFrustum(s shape.Shape, inside, outside Callback[E]) {
	start := time.Now()
	t.stats = Stats{}

	t.reconcile()
	if f, isFrustum := s.(*shape.Frustum); isFrustum {
		planeTests := f.PlaneTests()
		t.testNode(rootIndex, s, 0, inside, outside)
		t.stats.PlanesTested = f.PlaneTests() - planeTests
	} else {
		t.testNode(rootIndex, s, 0, inside, outside)
	}

	t.stats.Duration = time.Since(start)
	t.logger.Debugf("frustum test: %s", t.stats)
}

// reconcile removes and reinserts all invalidated entities.
func (t *Tree[E]) reconcile() {
	if len(t.invalidated) == 0 {
		return
	}

	stale := make([]E, 0, len(t.invalidated))
	for e := range t.invalidated {
		stale = append(stale, e)
	}

	for _, e := range stale {
		t.Remove(e)
		t.Insert(e)
	}
	t.stats.Reinserted = len(stale)
}

func (t *Tree[E]) testNode(idx int32, s shape.Shape, basePlane int, inside, outside Callback[E]) int {
	n := &t.nodes[idx]
	t.stats.NodesTested++

	pos, plane := s.TestBoundingBox(n.bounds, basePlane)
	if pos.Outside() {
		t.stats.SubtreesCulled++

		// Callbacks may remove entities from the lists of this node.
		culled := make([]E, 0, len(n.content)+len(n.childContent))
		for _, en := range n.content {
			culled = append(culled, en.entity)
		}
		culled = append(culled, n.childContent...)
		t.stats.Outside += len(culled)
		for _, e := range culled {
			outside(e)
		}
		return plane
	}

	if n.split() {
		childPlane := plane
		for c := n.firstChild; c < n.firstChild+8; c++ {
			childPlane = t.testNode(c, s, childPlane, inside, outside)
		}
	}

	// Callbacks may insert entities and grow the arena or remove entities
	// from the content list.
	content := append([]entry[E](nil), t.nodes[idx].content...)
	entityPlane := plane
	for _, en := range content {
		t.stats.EntitiesTested++

		var entityPos shape.Position
		entityPos, entityPlane = s.TestBoundingBox(en.box, entityPlane)
		if entityPos.Outside() {
			t.stats.Outside++
			outside(en.entity)
		} else {
			t.stats.Inside++
			inside(en.entity)
		}
	}

	return plane
}

// splitNode allocates the 8 children of a node. The child covering the
// upper half of the parent on X has bit 0 set in its octant index, Y bit 1
// and Z bit 2.
func (t *Tree[E]) splitNode(idx int32) {
	first := int32(len(t.nodes))
	parent := t.nodes[idx]
	half := parent.bounds.Size().Mul(0.5)

	for octant := 0; octant < 8; octant++ {
		bl := parent.bounds.BottomLeft
		if octant&1 != 0 {
			bl[0] += half[0]
		}
		if octant&2 != 0 {
			bl[1] += half[1]
		}
		if octant&4 != 0 {
			bl[2] += half[2]
		}

		t.nodes = append(t.nodes, node[E]{
			bounds:     shape.NewBox(bl, bl.Add(half)),
			depth:      parent.depth + 1,
			parent:     idx,
			firstChild: noIndex,
		})
	}

	t.nodes[idx].firstChild = first
}

// intersectingChild returns the only child of idx intersected by box or
// noIndex if box intersects zero or several children.
func (t *Tree[E]) intersectingChild(idx int32, box shape.Box) int32 {
	found := noIndex
	first := t.nodes[idx].firstChild
	for c := first; c < first+8; c++ {
		if !t.nodes[c].bounds.Intersects(box) {
			continue
		}
		if found != noIndex {
			return noIndex
		}
		found = c
	}
	return found
}

// removeEntity swap-removes e from list.
func removeEntity[E comparable](list []E, e E) []E {
	for i := range list {
		if list[i] == e {
			last := len(list) - 1
			list[i] = list[last]
			var zero E
			list[last] = zero
			return list[:last]
		}
	}
	return list
}
