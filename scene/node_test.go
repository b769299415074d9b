package scene

import (
	"reflect"
	"testing"
)

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name())
	}
	return out
}

func TestHierarchy(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")

	for _, step := range []struct{ parent, child *Node }{{root, a}, {root, b}, {a, c}} {
		if err := step.parent.AddChild(step.child); err != nil {
			t.Fatal(err)
		}
	}

	if c.Root() != root {
		t.Fatalf("expected root of c to be %v; got %v", root, c.Root())
	}

	expNames := []string{"root", "a", "c", "b"}
	if got := names(root.Descendants(true, nil)); !reflect.DeepEqual(got, expNames) {
		t.Fatalf("expected pre-order traversal %v; got %v", expNames, got)
	}

	expNames = []string{"c"}
	got := names(root.Descendants(false, func(n *Node) bool { return len(n.Children()) == 0 && n.Parent() != root }))
	if !reflect.DeepEqual(got, expNames) {
		t.Fatalf("expected filtered traversal %v; got %v", expNames, got)
	}

	if err := c.AddChild(root); err != ErrCycle {
		t.Fatalf("expected to get ErrCycle; got %v", err)
	}
	if err := a.AddChild(a); err != ErrCycle {
		t.Fatalf("expected to get ErrCycle; got %v", err)
	}

	// Reparenting detaches the child from its previous parent.
	if err := b.AddChild(c); err != nil {
		t.Fatal(err)
	}
	if len(a.Children()) != 0 || c.Parent() != b {
		t.Fatal("expected c to be moved below b")
	}

	if err := a.RemoveChild(c); err != ErrNotChild {
		t.Fatalf("expected to get ErrNotChild; got %v", err)
	}
}

func TestHierarchyNotifications(t *testing.T) {
	root := NewNode("root")
	parent := NewNode("parent")
	child := NewNode("child")
	grandChild := NewNode("grandChild")
	child.AddChild(grandChild)
	root.AddChild(parent)

	var log []string
	record := func(event string) HierarchyFunc {
		return func(node, target, p *Node) {
			log = append(log, event+":"+node.Name()+":"+target.Name()+":"+p.Name())
		}
	}
	cancelRoot := root.OnAdded(record("added"))
	grandChild.OnAdded(record("added"))
	root.OnRemoved(record("removed"))
	grandChild.OnRemoved(record("removed"))

	parent.AddChild(child)
	parent.RemoveChild(child)

	expLog := []string{
		"added:grandChild:child:parent",
		"added:root:child:parent",
		"removed:grandChild:child:parent",
		"removed:root:child:parent",
	}
	if !reflect.DeepEqual(log, expLog) {
		t.Fatalf("expected notifications %v; got %v", expLog, log)
	}

	log = nil
	cancelRoot()
	cancelRoot()
	parent.AddChild(child)
	if len(log) != 1 {
		t.Fatalf("expected 1 notification after cancelling the root listener; got %v", log)
	}
}

func TestCancelDuringEmission(t *testing.T) {
	n := NewNode("n")
	var calls int
	var cancelSecond Cancel
	n.OnLayoutChanged(func(_, _ *Node) {
		calls++
		cancelSecond()
	})
	cancelSecond = n.OnLayoutChanged(func(_, _ *Node) {
		calls++
	})

	n.SetLayout(LayoutDefault | LayoutStatic)
	if calls != 1 {
		t.Fatalf("expected listener cancelled during emission to be skipped; got %d calls", calls)
	}
}

func TestLayout(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	root.AddChild(child)

	if child.Layout() != LayoutDefault {
		t.Fatalf("expected new nodes to use the default layout; got %v", child.Layout())
	}

	var targets []string
	root.OnLayoutChanged(func(node, target *Node) {
		targets = append(targets, node.Name()+":"+target.Name())
	})

	child.SetLayout(child.Layout() | LayoutIgnoreCulling)
	child.SetLayout(child.Layout() | LayoutIgnoreCulling)

	expTargets := []string{"root:child"}
	if !reflect.DeepEqual(targets, expTargets) {
		t.Fatalf("expected layout notifications %v; got %v", expTargets, targets)
	}

	if !child.Layout().Has(LayoutDefault | LayoutIgnoreCulling) {
		t.Fatalf("expected layout to contain default and ignore-culling bits; got %v", child.Layout())
	}

	if exp, got := "default|ignore-culling", child.Layout().String(); got != exp {
		t.Fatalf("expected layout string %q; got %q", exp, got)
	}
	if exp, got := "none", Layout(0).String(); got != exp {
		t.Fatalf("expected layout string %q; got %q", exp, got)
	}
}

type rejectingComponent struct {
	BaseComponent
}

func (c *rejectingComponent) TargetAdded(*Node) error {
	return ErrNotRoot
}

func TestComponents(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	root.AddChild(child)

	var events []string
	root.OnComponentAdded(func(node, target *Node, c Component) {
		events = append(events, "added:"+node.Name()+":"+target.Name())
	})
	root.OnComponentRemoved(func(node, target *Node, c Component) {
		events = append(events, "removed:"+node.Name()+":"+target.Name())
	})

	surface := NewSurface("s", NewPositionGeometry(nil))
	if err := child.AddComponent(surface); err != nil {
		t.Fatal(err)
	}
	if surface.Target() != child {
		t.Fatalf("expected component target to be %v; got %v", child, surface.Target())
	}
	if err := root.AddComponent(surface); err != ErrComponentAttached {
		t.Fatalf("expected to get ErrComponentAttached; got %v", err)
	}

	if err := child.AddComponent(&rejectingComponent{}); err != ErrNotRoot {
		t.Fatalf("expected attach error to be returned; got %v", err)
	}
	if got := len(child.Components()); got != 1 {
		t.Fatalf("expected rejected component not to be attached; got %d components", got)
	}

	if found, ok := ComponentOf[GeometryProvider](child); !ok || found != surface {
		t.Fatal("expected to find surface through the GeometryProvider interface")
	}
	if _, ok := ComponentOf[*Transform](child); ok {
		t.Fatal("expected no transform component")
	}

	if err := child.RemoveComponent(surface); err != nil {
		t.Fatal(err)
	}
	if err := child.RemoveComponent(surface); err != ErrComponentNotFound {
		t.Fatalf("expected to get ErrComponentNotFound; got %v", err)
	}
	if surface.Target() != nil {
		t.Fatal("expected detached component to have no target")
	}

	expEvents := []string{"added:root:child", "removed:root:child"}
	if !reflect.DeepEqual(events, expEvents) {
		t.Fatalf("expected component events %v; got %v", expEvents, events)
	}
}

func TestStore(t *testing.T) {
	n := NewNode("n")
	var changes []string
	cancel := n.Data().OnPropertyChanged("speed", func(s *Store, name string) {
		if s.Node() != n {
			t.Fatalf("expected store owner to be %v; got %v", n, s.Node())
		}
		changes = append(changes, name)
	})

	n.Data().Set("speed", 1)
	n.Data().Set("other", 1)
	n.Data().Unset("speed")
	n.Data().Unset("speed")
	cancel()
	n.Data().Set("speed", 2)

	if len(changes) != 2 {
		t.Fatalf("expected 2 property notifications; got %d", len(changes))
	}
	if v, ok := n.Data().Get("speed"); !ok || v.(int) != 2 {
		t.Fatalf("expected speed to be 2; got %v", v)
	}
	if _, ok := n.Data().Mat4("speed"); ok {
		t.Fatal("expected non matrix property not to be returned as a matrix")
	}
}
