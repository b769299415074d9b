package scene

import "github.com/achilleasa/octocull/types"

// Transform holds the local matrix of a node and publishes its model to
// world matrix under PropertyModelToWorld. The published matrix is kept in
// sync when the local matrix changes or the node moves in the hierarchy.
type Transform struct {
	BaseComponent
	matrix types.Mat4

	cancelAdded   Cancel
	cancelRemoved Cancel
}

func NewTransform(matrix types.Mat4) *Transform {
	return &Transform{matrix: matrix}
}

func (t *Transform) TargetAdded(target *Node) error {
	if HasComponentOf[*Transform](target) {
		return ErrDuplicateTransform
	}
	if err := t.BaseComponent.TargetAdded(target); err != nil {
		return err
	}

	onHierarchyChange := func(node, subtree, _ *Node) {
		// Only hierarchy changes above the target move it.
		if node.HasAncestor(subtree) {
			t.update()
		}
	}
	t.cancelAdded = target.OnAdded(onHierarchyChange)
	t.cancelRemoved = target.OnRemoved(onHierarchyChange)
	t.update()
	return nil
}

func (t *Transform) TargetRemoved(target *Node) {
	t.cancelAdded()
	t.cancelRemoved()
	t.BaseComponent.TargetRemoved(target)
	target.Data().Unset(PropertyModelToWorld)

	parentWorld := types.Ident4()
	for a := target.Parent(); a != nil; a = a.Parent() {
		if pt, ok := ComponentOf[*Transform](a); ok {
			parentWorld = pt.ModelToWorld()
			break
		}
	}
	propagateWorld(target, parentWorld)
}

// Matrix returns the local matrix.
func (t *Transform) Matrix() types.Mat4 {
	return t.matrix
}

// SetMatrix replaces the local matrix and refreshes the world matrices of
// the target and all transforms below it.
func (t *Transform) SetMatrix(m types.Mat4) {
	t.matrix = m
	if t.Target() != nil {
		t.update()
	}
}

// ModelToWorld returns the published world matrix.
func (t *Transform) ModelToWorld() types.Mat4 {
	if t.Target() == nil {
		return t.matrix
	}
	m, _ := t.Target().Data().Mat4(PropertyModelToWorld)
	return m
}

func (t *Transform) update() {
	parentWorld := types.Ident4()
	for a := t.Target().Parent(); a != nil; a = a.Parent() {
		if pt, ok := ComponentOf[*Transform](a); ok {
			parentWorld = pt.ModelToWorld()
			break
		}
	}
	t.publish(parentWorld)
}

func (t *Transform) publish(parentWorld types.Mat4) {
	world := parentWorld.Mul4(t.matrix)
	t.Target().Data().Set(PropertyModelToWorld, world)
	propagateWorld(t.Target(), world)
}

// Refresh the nearest transforms below n.
func propagateWorld(n *Node, world types.Mat4) {
	for _, child := range n.children {
		if ct, ok := ComponentOf[*Transform](child); ok {
			ct.publish(world)
			continue
		}
		propagateWorld(child, world)
	}
}
