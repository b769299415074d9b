package scene

import "fmt"

// HierarchyFunc is invoked when target is attached to or detached from
// parent. node is the node the listener was registered on.
type HierarchyFunc func(node, target, parent *Node)

// LayoutFunc is invoked on node and each of its ancestors when the layout
// of target changes.
type LayoutFunc func(node, target *Node)

// Node is an element of the scene graph.
type Node struct {
	name       string
	parent     *Node
	children   []*Node
	layout     Layout
	data       *Store
	components []Component

	added            Signal[HierarchyFunc]
	removed          Signal[HierarchyFunc]
	layoutChanged    Signal[LayoutFunc]
	componentAdded   Signal[ComponentFunc]
	componentRemoved Signal[ComponentFunc]
}

// Create a new detached node with the default layout.
func NewNode(name string) *Node {
	n := &Node{
		name:   name,
		layout: LayoutDefault,
	}
	n.data = newStore(n)
	return n
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%q)", n.name)
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the topmost ancestor of n or n itself if it has no parent.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Children returns a copy of the node's child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Data returns the property store of the node.
func (n *Node) Data() *Store {
	return n.data
}

// HasAncestor returns true if other is n or one of its ancestors.
func (n *Node) HasAncestor(other *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Descendants returns the subtree rooted at n in depth-first pre-order.
// Nodes for which pred returns false are skipped but their children are
// still visited. A nil pred matches every node.
func (n *Node) Descendants(includeSelf bool, pred func(*Node) bool) []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(cur *Node) {
		if (cur != n || includeSelf) && (pred == nil || pred(cur)) {
			out = append(out, cur)
		}
		for _, child := range cur.children {
			visit(child)
		}
	}
	visit(n)
	return out
}

// AddChild attaches child to n. If child already has a parent it is
// detached first.
func (n *Node) AddChild(child *Node) error {
	if n.HasAncestor(child) {
		return ErrCycle
	}
	if child.parent == n {
		return nil
	}
	if child.parent != nil {
		if err := child.parent.RemoveChild(child); err != nil {
			return err
		}
	}

	n.children = append(n.children, child)
	child.parent = n

	for _, d := range child.Descendants(true, nil) {
		d.added.Emit(func(fn HierarchyFunc) { fn(d, child, n) })
	}
	for a := n; a != nil; a = a.parent {
		a.added.Emit(func(fn HierarchyFunc) { fn(a, child, n) })
	}
	return nil
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	index := -1
	for i, c := range n.children {
		if c == child {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrNotChild
	}

	n.children = append(n.children[:index], n.children[index+1:]...)
	child.parent = nil

	for _, d := range child.Descendants(true, nil) {
		d.removed.Emit(func(fn HierarchyFunc) { fn(d, child, n) })
	}
	for a := n; a != nil; a = a.parent {
		a.removed.Emit(func(fn HierarchyFunc) { fn(a, child, n) })
	}
	return nil
}

func (n *Node) Layout() Layout {
	return n.layout
}

// SetLayout replaces the layout bitmask and notifies n and its ancestors.
func (n *Node) SetLayout(layout Layout) {
	if n.layout == layout {
		return
	}
	n.layout = layout
	for a := n; a != nil; a = a.parent {
		a.layoutChanged.Emit(func(fn LayoutFunc) { fn(a, n) })
	}
}

// Components returns a copy of the attached component list.
func (n *Node) Components() []Component {
	return append([]Component(nil), n.components...)
}

// AddComponent attaches c to n. If the component rejects the node its
// error is returned and n is left untouched.
func (n *Node) AddComponent(c Component) error {
	if c.Target() != nil {
		return ErrComponentAttached
	}
	if err := c.TargetAdded(n); err != nil {
		return err
	}

	n.components = append(n.components, c)
	for a := n; a != nil; a = a.parent {
		a.componentAdded.Emit(func(fn ComponentFunc) { fn(a, n, c) })
	}
	return nil
}

// RemoveComponent detaches c from n.
func (n *Node) RemoveComponent(c Component) error {
	index := -1
	for i, other := range n.components {
		if other == c {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrComponentNotFound
	}

	n.components = append(n.components[:index], n.components[index+1:]...)
	c.TargetRemoved(n)
	for a := n; a != nil; a = a.parent {
		a.componentRemoved.Emit(func(fn ComponentFunc) { fn(a, n, c) })
	}
	return nil
}

// OnAdded registers a listener that fires when a subtree containing n is
// attached to a parent or when a subtree is attached anywhere below n.
func (n *Node) OnAdded(fn HierarchyFunc) Cancel {
	return n.added.Connect(fn)
}

// OnRemoved registers a listener that fires when a subtree containing n is
// detached from its parent or when a subtree is detached anywhere below n.
func (n *Node) OnRemoved(fn HierarchyFunc) Cancel {
	return n.removed.Connect(fn)
}

func (n *Node) OnLayoutChanged(fn LayoutFunc) Cancel {
	return n.layoutChanged.Connect(fn)
}

func (n *Node) OnComponentAdded(fn ComponentFunc) Cancel {
	return n.componentAdded.Connect(fn)
}

func (n *Node) OnComponentRemoved(fn ComponentFunc) Cancel {
	return n.componentRemoved.Connect(fn)
}
