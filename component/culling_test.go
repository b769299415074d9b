package component

import (
	"testing"

	"github.com/achilleasa/octocull/scene"
	"github.com/achilleasa/octocull/types"
)

var unitCube = []types.Vec3{
	{-0.5, -0.5, -0.5},
	{0.5, 0.5, 0.5},
}

type cullingFixture struct {
	root      *scene.Node
	sm        *scene.SceneManager
	camera    *Camera
	cameraObj *scene.Node
	culling   *Culling
}

func newEntity(t *testing.T, name string, pos types.Vec3) (*scene.Node, *scene.Transform) {
	n := scene.NewNode(name)
	transform := scene.NewTransform(types.Translate4(pos))
	for _, c := range []scene.Component{
		scene.NewSurface(name, scene.NewPositionGeometry(unitCube)),
		transform,
		NewBoundingBox(),
	} {
		if err := n.AddComponent(c); err != nil {
			t.Fatal(err)
		}
	}
	return n, transform
}

// newCullingFixture sets up a scene root with a camera at (0, 0, 10)
// looking down -Z with a narrow field of view.
func newCullingFixture(t *testing.T, withSceneManager bool, opts ...CullingOption) *cullingFixture {
	f := &cullingFixture{
		root:      scene.NewNode("root"),
		cameraObj: scene.NewNode("camera"),
		camera:    NewCamera(20, 1, 0.1, 100),
		culling:   NewCulling(opts...),
	}
	f.camera.LookAt(types.Vec3{0, 0, 10}, types.Vec3{0, 0, 0}, types.Vec3{0, 1, 0})

	if withSceneManager {
		f.sm = scene.NewSceneManager()
		if err := f.root.AddComponent(f.sm); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.cameraObj.AddComponent(f.camera); err != nil {
		t.Fatal(err)
	}
	if err := f.cameraObj.AddComponent(f.culling); err != nil {
		t.Fatal(err)
	}
	if err := f.root.AddChild(f.cameraObj); err != nil {
		t.Fatal(err)
	}
	return f
}

func assertLayout(t *testing.T, n *scene.Node, inside bool) {
	t.Helper()
	layout := n.Layout()
	if inside && !layout.Has(scene.LayoutDefault|scene.LayoutInsideFrustum) {
		t.Fatalf("expected %v to be inside the frustum; got layout %v", n, layout)
	}
	if !inside && layout&(scene.LayoutDefault|scene.LayoutInsideFrustum) != 0 {
		t.Fatalf("expected %v to be culled; got layout %v", n, layout)
	}
}

func TestCullingAttachErrors(t *testing.T) {
	n := scene.NewNode("not-a-camera")
	if err := n.AddComponent(NewCulling()); err != ErrNoCamera {
		t.Fatalf("expected to get ErrNoCamera; got %v", err)
	}
	if got := len(n.Components()); got != 0 {
		t.Fatalf("expected rejected culling component not to be attached; got %d components", got)
	}

	n.AddComponent(NewCamera(45, 1, 1, 100))
	if err := n.AddComponent(NewCulling()); err != nil {
		t.Fatal(err)
	}
	if err := n.AddComponent(NewCulling()); err != ErrDuplicateCulling {
		t.Fatalf("expected to get ErrDuplicateCulling; got %v", err)
	}

	if err := n.AddComponent(NewCulling(WithBindProperty("customViewProjection"))); err != ErrDuplicateCulling {
		t.Fatalf("expected to get ErrDuplicateCulling; got %v", err)
	}

	other := scene.NewNode("camera")
	other.AddComponent(NewCamera(45, 1, 1, 100))
	if err := other.AddComponent(NewCulling(WithBindProperty("customViewProjection"))); err != ErrNoCamera {
		t.Fatalf("expected to get ErrNoCamera for a missing bind property; got %v", err)
	}
}

func TestCullingScenario(t *testing.T) {
	f := newCullingFixture(t, true)
	near, _ := newEntity(t, "near", types.Vec3{0, 0, 0})
	far, farTransform := newEntity(t, "far", types.Vec3{40, 0, 0})
	f.root.AddChild(near)
	f.root.AddChild(far)

	if f.culling.State() != CullingActive {
		t.Fatalf("expected culling to be active; got %v", f.culling.State())
	}
	if f.culling.TrackedCount() != 2 {
		t.Fatalf("expected 2 tracked nodes; got %d", f.culling.TrackedCount())
	}

	f.sm.NextFrame()
	assertLayout(t, near, true)
	assertLayout(t, far, false)

	if !f.culling.Visible(near) || f.culling.Visible(far) {
		t.Fatal("expected only the near entity to be visible")
	}

	stats := f.culling.Stats()
	if stats.Inside != 1 || stats.Outside != 1 {
		t.Fatalf("expected 1 inside and 1 outside callback; got %d and %d", stats.Inside, stats.Outside)
	}

	// Moving the far entity into view restores its default bit on the next frame.
	farTransform.SetMatrix(types.Translate4(types.Vec3{1, 0, 0}))
	assertLayout(t, far, false)

	f.sm.NextFrame()
	assertLayout(t, far, true)
	if got := f.culling.Stats().Reinserted; got != 1 {
		t.Fatalf("expected 1 reinserted entity; got %d", got)
	}

	// Panning the camera away culls both entities.
	f.camera.LookAt(types.Vec3{0, 0, 10}, types.Vec3{0, 10, 0}, types.Vec3{0, 0, 1})
	f.sm.NextFrame()
	assertLayout(t, near, false)
	assertLayout(t, far, false)
}

func TestCullingSkipsTestsWithoutChanges(t *testing.T) {
	f := newCullingFixture(t, true)
	far, _ := newEntity(t, "far", types.Vec3{40, 0, 0})
	f.root.AddChild(far)
	f.sm.NextFrame()
	assertLayout(t, far, false)

	// Without camera or entity changes the layout set by hand survives.
	far.SetLayout(far.Layout() | scene.LayoutInsideFrustum)
	f.sm.NextFrame()
	if !far.Layout().Has(scene.LayoutInsideFrustum) {
		t.Fatal("expected no frustum test to run without changes")
	}

	f.camera.Orbit(0.01)
	f.sm.NextFrame()
	if far.Layout().Has(scene.LayoutInsideFrustum) {
		t.Fatal("expected camera movement to trigger a new frustum test")
	}
}

func TestCullingTracksSceneChanges(t *testing.T) {
	f := newCullingFixture(t, true)
	group := scene.NewNode("group")
	a, _ := newEntity(t, "a", types.Vec3{0, 0, 0})
	b, _ := newEntity(t, "b", types.Vec3{40, 0, 0})
	group.AddChild(a)
	group.AddChild(b)
	unbounded := scene.NewNode("unbounded")
	group.AddChild(unbounded)

	f.root.AddChild(group)
	if !f.culling.Tracked(a) || !f.culling.Tracked(b) || f.culling.Tracked(unbounded) {
		t.Fatal("expected only bounded nodes of the attached subtree to be tracked")
	}

	f.sm.NextFrame()
	assertLayout(t, b, false)

	// Ignoring culling removes the node and gives back the default bit.
	b.SetLayout(b.Layout() | scene.LayoutIgnoreCulling)
	if f.culling.Tracked(b) {
		t.Fatal("expected node ignoring culling to be untracked")
	}
	if !b.Layout().Has(scene.LayoutDefault) || b.Layout().Has(scene.LayoutInsideFrustum) {
		t.Fatalf("expected untracked node to get its default bit back; got %v", b.Layout())
	}

	b.SetLayout(b.Layout() &^ scene.LayoutIgnoreCulling)
	if !f.culling.Tracked(b) {
		t.Fatal("expected node to be tracked again")
	}

	// Late bounding boxes are picked up.
	unbounded.AddComponent(NewFixedBoundingBox(shapeAt(types.Vec3{0, 1, 0})))
	if !f.culling.Tracked(unbounded) {
		t.Fatal("expected node to be tracked after adding a bounding box")
	}
	bb, _ := scene.ComponentOf[*BoundingBox](unbounded)
	unbounded.RemoveComponent(bb)
	if f.culling.Tracked(unbounded) {
		t.Fatal("expected node to be untracked after removing its bounding box")
	}

	f.root.RemoveChild(group)
	if f.culling.TrackedCount() != 0 || f.culling.Octree().Len() != 0 {
		t.Fatalf("expected detached subtree to be untracked; got %d tracked and %d indexed", f.culling.TrackedCount(), f.culling.Octree().Len())
	}
}

func TestCullingLifecycle(t *testing.T) {
	f := newCullingFixture(t, false)
	e, _ := newEntity(t, "e", types.Vec3{40, 0, 0})
	f.root.AddChild(e)

	if f.culling.State() != CullingAwaiting {
		t.Fatalf("expected culling to await a scene manager; got %v", f.culling.State())
	}
	if f.culling.TrackedCount() != 0 {
		t.Fatal("expected no tracked nodes before activation")
	}

	sm := scene.NewSceneManager()
	f.root.AddComponent(sm)
	if f.culling.State() != CullingActive || !f.culling.Tracked(e) {
		t.Fatal("expected culling to activate once the root gets a scene manager")
	}

	sm.NextFrame()
	assertLayout(t, e, false)

	// Detaching the camera from the scene stops tracking and undoes culling.
	f.root.RemoveChild(f.cameraObj)
	if f.culling.State() != CullingAwaiting || f.culling.TrackedCount() != 0 {
		t.Fatalf("expected culling to deactivate; got state %v with %d tracked", f.culling.State(), f.culling.TrackedCount())
	}
	if !e.Layout().Has(scene.LayoutDefault) {
		t.Fatal("expected default bit to be restored on deactivation")
	}

	f.root.AddChild(f.cameraObj)
	if f.culling.State() != CullingActive {
		t.Fatalf("expected culling to reactivate; got %v", f.culling.State())
	}

	f.root.RemoveComponent(sm)
	if f.culling.State() != CullingAwaiting || f.culling.TrackedCount() != 0 {
		t.Fatal("expected culling to deactivate when the scene manager is removed")
	}

	f.cameraObj.RemoveComponent(f.culling)
	if f.culling.State() != CullingUnattached {
		t.Fatalf("expected culling to be unattached; got %v", f.culling.State())
	}
}

// addSecondCamera attaches a camera at (40, 0, 10) looking down -Z that
// shares the culling index of the fixture.
func addSecondCamera(t *testing.T, f *cullingFixture) (*scene.Node, *Culling) {
	t.Helper()
	second := scene.NewNode("second-camera")
	cam := NewCamera(20, 1, 0.1, 100)
	cam.LookAt(types.Vec3{40, 0, 10}, types.Vec3{40, 0, 0}, types.Vec3{0, 1, 0})
	if err := second.AddComponent(cam); err != nil {
		t.Fatal(err)
	}
	other := NewCulling(WithIndex(f.culling.Index()))
	if err := second.AddComponent(other); err != nil {
		t.Fatal(err)
	}
	if err := f.root.AddChild(second); err != nil {
		t.Fatal(err)
	}
	return second, other
}

func TestCullingSharedIndex(t *testing.T) {
	index := NewCullingIndex(100, 4)
	f := newCullingFixture(t, true, WithIndex(index))
	e, _ := newEntity(t, "e", types.Vec3{0, 0, 0})
	f.root.AddChild(e)
	_, other := addSecondCamera(t, f)

	tree := index.Octree()
	if f.culling.Octree() != tree || other.Octree() != tree {
		t.Fatal("expected both culling components to share the octree")
	}
	if tree.Len() != 1 || tree.Extent() != 100 {
		t.Fatalf("expected shared octree with 1 entity and extent 100; got %d entities and extent %f", tree.Len(), tree.Extent())
	}
	if index.Trackers(e) != 2 {
		t.Fatalf("expected 2 trackers; got %d", index.Trackers(e))
	}
}

func TestCullingSharedIndexSingleViewer(t *testing.T) {
	specs := []struct {
		descr      string
		pos        types.Vec3
		firstSees  bool
		secondSees bool
	}{
		{"seen by the first camera", types.Vec3{0, 0, 0}, true, false},
		{"seen by the second camera", types.Vec3{40, 0, 0}, false, true},
	}

	for specIndex, spec := range specs {
		f := newCullingFixture(t, true)
		e, _ := newEntity(t, "e", spec.pos)
		f.root.AddChild(e)
		_, other := addSecondCamera(t, f)

		f.sm.NextFrame()
		assertLayout(t, e, true)
		if f.culling.Visible(e) != spec.firstSees || other.Visible(e) != spec.secondSees {
			t.Fatalf("[spec %d: %s] expected visibility (%t, %t); got (%t, %t)", specIndex, spec.descr, spec.firstSees, spec.secondSees, f.culling.Visible(e), other.Visible(e))
		}

		// Only the camera that does not see the entity retests.
		if spec.firstSees {
			other.retest = true
		} else {
			f.culling.retest = true
		}
		f.sm.NextFrame()
		assertLayout(t, e, true)
	}
}

func TestCullingSharedIndexCameraRemoval(t *testing.T) {
	f := newCullingFixture(t, true)
	e, transform := newEntity(t, "e", types.Vec3{40, 0, 0})
	f.root.AddChild(e)
	second, other := addSecondCamera(t, f)

	f.sm.NextFrame()
	assertLayout(t, e, true)

	// The remaining camera keeps the entity indexed.
	f.root.RemoveChild(second)
	if other.State() != CullingAwaiting || other.TrackedCount() != 0 {
		t.Fatalf("expected second culling component to deactivate; got state %v with %d tracked", other.State(), other.TrackedCount())
	}
	tree := f.culling.Octree()
	if tree.Len() != 1 || !tree.Contains(e) || !f.culling.Tracked(e) {
		t.Fatalf("expected entity to stay indexed; got %d indexed", tree.Len())
	}
	assertLayout(t, e, false)

	transform.SetMatrix(types.Translate4(types.Vec3{0, 0, 0}))
	f.sm.NextFrame()
	assertLayout(t, e, true)
	if !f.culling.Visible(e) {
		t.Fatal("expected entity to be visible to the remaining camera")
	}

	// Dropping the last tracker removes the entity from the octree.
	f.root.RemoveChild(e)
	if tree.Len() != 0 {
		t.Fatalf("expected empty octree; got %d indexed", tree.Len())
	}
	if !e.Layout().Has(scene.LayoutDefault) || e.Layout().Has(scene.LayoutInsideFrustum) {
		t.Fatalf("expected untracked entity to keep only the default bit; got layout %v", e.Layout())
	}
}
