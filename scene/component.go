package scene

// Component is implemented by all objects that can be attached to a node.
type Component interface {
	// Called before the component is attached to target. Returning an
	// error aborts the attachment.
	TargetAdded(target *Node) error

	// Called after the component has been detached from target.
	TargetRemoved(target *Node)

	// The node this component is attached to or nil.
	Target() *Node
}

// BaseComponent tracks the target of a component and can be embedded by
// component implementations.
type BaseComponent struct {
	target *Node
}

func (c *BaseComponent) Target() *Node {
	return c.target
}

func (c *BaseComponent) TargetAdded(target *Node) error {
	c.target = target
	return nil
}

func (c *BaseComponent) TargetRemoved(*Node) {
	c.target = nil
}

// ComponentFunc is invoked on node and each of its ancestors when component
// c is added to or removed from target.
type ComponentFunc func(node, target *Node, c Component)

// ComponentOf returns the first component of type T attached to n.
func ComponentOf[T Component](n *Node) (T, bool) {
	for _, c := range n.components {
		if typed, ok := c.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// ComponentsOf returns all components of type T attached to n.
func ComponentsOf[T Component](n *Node) []T {
	var out []T
	for _, c := range n.components {
		if typed, ok := c.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// HasComponentOf returns true if n has a component of type T.
func HasComponentOf[T Component](n *Node) bool {
	_, found := ComponentOf[T](n)
	return found
}
