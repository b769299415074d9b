package component

import (
	"github.com/achilleasa/octocull/log"
	"github.com/achilleasa/octocull/octree"
	"github.com/achilleasa/octocull/scene"
	"github.com/achilleasa/octocull/shape"
)

// Default culling settings.
const (
	DefaultWorldExtent  float32 = 50
	DefaultMaxDepth     uint    = 7
	DefaultBindProperty         = PropertyWorldToScreenMatrix
)

// CullingState describes the lifecycle of a culling component.
type CullingState uint8

const (
	// The component is not attached to a node.
	CullingUnattached CullingState = iota

	// The component is attached to a camera whose root has no scene manager.
	CullingAwaiting

	// The component tracks the scene and tests the frustum on each frame.
	CullingActive
)

func (s CullingState) String() string {
	switch s {
	case CullingUnattached:
		return "unattached"
	case CullingAwaiting:
		return "awaiting"
	case CullingActive:
		return "active"
	}
	return "unknown"
}

// CullingOption configures a culling component.
type CullingOption func(*Culling)

// Share an index between culling components. When set, the world extent
// and max depth options are ignored.
func WithIndex(index *CullingIndex) CullingOption {
	return func(c *Culling) {
		c.index = index
	}
}

func WithWorldExtent(extent float32) CullingOption {
	return func(c *Culling) {
		c.worldExtent = extent
	}
}

func WithMaxDepth(depth uint) CullingOption {
	return func(c *Culling) {
		c.maxDepth = depth
	}
}

// Bind the frustum to a matrix property other than the world to screen
// matrix published by the camera.
func WithBindProperty(name string) CullingOption {
	return func(c *Culling) {
		c.bindProperty = name
	}
}

// NodeBox returns the world space box of a node's BoundingBox component.
// It is the octree box function used by culling components.
func NodeBox(n *scene.Node) (shape.Box, bool) {
	bb, ok := scene.ComponentOf[*BoundingBox](n)
	if !ok {
		return shape.Box{}, false
	}
	return bb.Box(), true
}

// Culling keeps an octree of the bounded nodes in the scene of its camera
// and, once per frame, tests it against the camera frustum. Nodes inside
// the frustum get LayoutInsideFrustum; nodes outside lose LayoutInsideFrustum
// and LayoutDefault. LayoutDefault is restored once the node becomes
// visible again. Components sharing a CullingIndex only hide a node when
// none of them sees it.
type Culling struct {
	scene.BaseComponent
	logger log.Logger

	index        *CullingIndex
	frustum      *shape.Frustum
	worldExtent  float32
	maxDepth     uint
	bindProperty string

	state  CullingState
	root   *scene.Node
	sm     *scene.SceneManager
	retest bool

	// Tracked nodes and the cancel func of their bounding box listener.
	tracked map[*scene.Node]scene.Cancel

	targetCancels []scene.Cancel
	rootCancels   []scene.Cancel
	frameCancel   scene.Cancel
}

func NewCulling(opts ...CullingOption) *Culling {
	c := &Culling{
		logger:       log.New("culling"),
		frustum:      shape.NewFrustum(),
		worldExtent:  DefaultWorldExtent,
		maxDepth:     DefaultMaxDepth,
		bindProperty: DefaultBindProperty,
		tracked:      make(map[*scene.Node]scene.Cancel),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.index == nil {
		c.index = NewCullingIndex(c.worldExtent, c.maxDepth)
	}
	return c
}

func (c *Culling) TargetAdded(target *scene.Node) error {
	if scene.HasComponentOf[*Culling](target) {
		return ErrDuplicateCulling
	}
	if !target.Data().Has(c.bindProperty) {
		return ErrNoCamera
	}
	if err := c.BaseComponent.TargetAdded(target); err != nil {
		return err
	}

	onHierarchyChange := func(_, _, _ *scene.Node) { c.refreshRoot() }
	c.targetCancels = []scene.Cancel{
		target.OnAdded(onHierarchyChange),
		target.OnRemoved(onHierarchyChange),
		target.Data().OnPropertyChanged(c.bindProperty, func(*scene.Store, string) {
			c.retest = true
		}),
	}

	c.state = CullingAwaiting
	c.refreshRoot()
	return nil
}

func (c *Culling) TargetRemoved(target *scene.Node) {
	c.detachRoot()
	for _, cancel := range c.targetCancels {
		cancel()
	}
	c.targetCancels = nil
	c.state = CullingUnattached
	c.BaseComponent.TargetRemoved(target)
}

func (c *Culling) State() CullingState {
	return c.state
}

func (c *Culling) Index() *CullingIndex {
	return c.index
}

func (c *Culling) Octree() *octree.Tree[*scene.Node] {
	return c.index.tree
}

func (c *Culling) Frustum() *shape.Frustum {
	return c.frustum
}

func (c *Culling) BindProperty() string {
	return c.bindProperty
}

// Tracked returns true if n is indexed by this component.
func (c *Culling) Tracked(n *scene.Node) bool {
	_, tracked := c.tracked[n]
	return tracked
}

// TrackedCount returns the number of indexed nodes.
func (c *Culling) TrackedCount() int {
	return len(c.tracked)
}

// Visible returns true if n is tracked and was inside the frustum during
// the last test.
func (c *Culling) Visible(n *scene.Node) bool {
	return c.Tracked(n) && c.index.visibleTo(c, n)
}

// Stats returns the statistics of the last test run on the octree. For a
// shared index this may be the test of another component.
func (c *Culling) Stats() octree.Stats {
	return c.index.tree.Stats()
}

// refreshRoot follows the camera to the root of its current tree.
func (c *Culling) refreshRoot() {
	root := c.Target().Root()
	if root == c.root {
		return
	}
	c.detachRoot()

	c.root = root
	c.rootCancels = []scene.Cancel{
		root.OnAdded(func(_, subtree, _ *scene.Node) { c.trackSubtree(subtree) }),
		root.OnRemoved(func(_, subtree, _ *scene.Node) { c.untrackSubtree(subtree) }),
		root.OnLayoutChanged(c.onLayoutChanged),
		root.OnComponentAdded(c.onComponentAdded),
		root.OnComponentRemoved(c.onComponentRemoved),
	}

	if sm, ok := scene.ComponentOf[*scene.SceneManager](root); ok {
		c.activate(sm)
	}
}

func (c *Culling) detachRoot() {
	if c.state == CullingActive {
		c.deactivate()
	}
	for _, cancel := range c.rootCancels {
		cancel()
	}
	c.rootCancels = nil
	c.root = nil
}

func (c *Culling) activate(sm *scene.SceneManager) {
	c.sm = sm
	c.state = CullingActive
	c.frameCancel = sm.OnFrameBegin(func(*scene.SceneManager, uint64) { c.testFrustum() })
	c.trackSubtree(c.root)
	c.retest = true
	c.logger.Infof("activated for camera %q; tracking %d node(s)", c.Target().Name(), len(c.tracked))
}

func (c *Culling) deactivate() {
	// Leave the active state first so layout changes made while untracking
	// do not track the nodes again.
	c.state = CullingAwaiting
	c.frameCancel()
	c.frameCancel = nil
	for n := range c.tracked {
		c.untrack(n)
	}
	c.sm = nil
	c.logger.Infof("deactivated for camera %q", c.Target().Name())
}

func (c *Culling) onComponentAdded(_, target *scene.Node, comp scene.Component) {
	switch typed := comp.(type) {
	case *scene.SceneManager:
		if target == c.root && c.state != CullingActive {
			c.activate(typed)
		}
	case *BoundingBox:
		if c.state == CullingActive {
			c.track(target)
		}
	}
}

func (c *Culling) onComponentRemoved(_, target *scene.Node, comp scene.Component) {
	switch typed := comp.(type) {
	case *scene.SceneManager:
		if typed == c.sm {
			c.deactivate()
		}
	case *BoundingBox:
		c.untrack(target)
	}
}

func (c *Culling) onLayoutChanged(_, target *scene.Node) {
	if c.state != CullingActive {
		return
	}
	if target.Layout().Has(scene.LayoutIgnoreCulling) {
		c.untrack(target)
	} else {
		c.track(target)
	}
}

func (c *Culling) trackSubtree(subtree *scene.Node) {
	if c.state != CullingActive {
		return
	}
	before := len(c.tracked)
	for _, n := range subtree.Descendants(true, nil) {
		c.track(n)
	}
	if added := len(c.tracked) - before; added > 0 {
		c.logger.Debugf("tracking %d new node(s) below %q", added, subtree.Name())
	}
}

func (c *Culling) untrackSubtree(subtree *scene.Node) {
	for _, n := range subtree.Descendants(true, nil) {
		c.untrack(n)
	}
}

func (c *Culling) track(n *scene.Node) {
	if _, tracked := c.tracked[n]; tracked || n.Layout().Has(scene.LayoutIgnoreCulling) {
		return
	}
	bb, ok := scene.ComponentOf[*BoundingBox](n)
	if !ok {
		return
	}

	c.tracked[n] = bb.OnInvalidated(func(*BoundingBox) {
		c.index.tree.Invalidate(n)
		c.retest = true
	})
	c.index.track(n)
	c.retest = true
}

func (c *Culling) untrack(n *scene.Node) {
	cancel, tracked := c.tracked[n]
	if !tracked {
		return
	}
	cancel()
	delete(c.tracked, n)
	c.index.untrack(c, n)
	c.retest = true
}

func (c *Culling) testFrustum() {
	if !c.retest {
		return
	}
	m, ok := c.Target().Data().Mat4(c.bindProperty)
	if !ok {
		return
	}

	c.retest = false
	c.frustum.UpdateFromMatrix(m)
	c.index.tree.TestFrustum(c.frustum, c.inside, c.outside)
}

// A shared octree also holds nodes of other scenes; only tracked nodes are
// classified.
func (c *Culling) inside(n *scene.Node) {
	if c.Tracked(n) {
		c.index.markInside(c, n)
	}
}

func (c *Culling) outside(n *scene.Node) {
	if c.Tracked(n) {
		c.index.markOutside(c, n)
	}
}
