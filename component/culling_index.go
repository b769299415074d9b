package component

import (
	"github.com/achilleasa/octocull/octree"
	"github.com/achilleasa/octocull/scene"
)

// CullingIndex owns the octree used by one or more culling components.
// Nodes stay indexed while at least one component tracks them and remain
// visible while at least one component reports them inside its frustum.
type CullingIndex struct {
	tree *octree.Tree[*scene.Node]

	// Number of components tracking each node.
	refs map[*scene.Node]int

	// Components that saw each node inside their frustum on their last test.
	viewers map[*scene.Node]map[*Culling]struct{}

	// Nodes whose LayoutDefault bit was cleared by the index.
	cleared map[*scene.Node]struct{}
}

// NewCullingIndex creates an index whose octree spans [-extent, extent] on
// every axis.
func NewCullingIndex(extent float32, maxDepth uint) *CullingIndex {
	return &CullingIndex{
		tree:    octree.New[*scene.Node](extent, maxDepth, NodeBox),
		refs:    make(map[*scene.Node]int),
		viewers: make(map[*scene.Node]map[*Culling]struct{}),
		cleared: make(map[*scene.Node]struct{}),
	}
}

func (ix *CullingIndex) Octree() *octree.Tree[*scene.Node] {
	return ix.tree
}

// Trackers returns the number of components tracking n.
func (ix *CullingIndex) Trackers(n *scene.Node) int {
	return ix.refs[n]
}

func (ix *CullingIndex) track(n *scene.Node) {
	ix.refs[n]++
	if ix.refs[n] == 1 {
		ix.tree.Insert(n)
	}
}

// untrack drops the reference held by c. The node leaves the octree once
// its last tracker lets go.
func (ix *CullingIndex) untrack(c *Culling, n *scene.Node) {
	refs, tracked := ix.refs[n]
	if !tracked {
		return
	}

	wasViewer := ix.visibleTo(c, n)
	ix.dropViewer(c, n)
	if refs > 1 {
		ix.refs[n] = refs - 1
		if wasViewer && len(ix.viewers[n]) == 0 {
			ix.hide(n)
		}
		return
	}

	delete(ix.refs, n)
	delete(ix.viewers, n)
	ix.tree.Remove(n)

	layout := n.Layout() &^ scene.LayoutInsideFrustum
	if _, wasCleared := ix.cleared[n]; wasCleared {
		delete(ix.cleared, n)
		layout |= scene.LayoutDefault
	}
	n.SetLayout(layout)
}

func (ix *CullingIndex) markInside(c *Culling, n *scene.Node) {
	viewers := ix.viewers[n]
	if viewers == nil {
		viewers = make(map[*Culling]struct{})
		ix.viewers[n] = viewers
	}
	viewers[c] = struct{}{}

	layout := n.Layout() | scene.LayoutInsideFrustum
	if _, wasCleared := ix.cleared[n]; wasCleared {
		delete(ix.cleared, n)
		layout |= scene.LayoutDefault
	}
	n.SetLayout(layout)
}

// markOutside records that c no longer sees n. The node is hidden only when
// no other component sees it.
func (ix *CullingIndex) markOutside(c *Culling, n *scene.Node) {
	ix.dropViewer(c, n)
	if len(ix.viewers[n]) == 0 {
		ix.hide(n)
	}
}

func (ix *CullingIndex) visibleTo(c *Culling, n *scene.Node) bool {
	_, visible := ix.viewers[n][c]
	return visible
}

func (ix *CullingIndex) dropViewer(c *Culling, n *scene.Node) {
	viewers := ix.viewers[n]
	delete(viewers, c)
	if viewers != nil && len(viewers) == 0 {
		delete(ix.viewers, n)
	}
}

func (ix *CullingIndex) hide(n *scene.Node) {
	layout := n.Layout() &^ scene.LayoutInsideFrustum
	if layout&scene.LayoutDefault != 0 {
		layout &^= scene.LayoutDefault
		ix.cleared[n] = struct{}{}
	}
	n.SetLayout(layout)
}
