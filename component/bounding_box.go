package component

import (
	"github.com/achilleasa/octocull/scene"
	"github.com/achilleasa/octocull/shape"
)

// BoundingBox lazily computes the model space and world space boxes of its
// node. The model box is derived from the position attribute of every
// geometry provider attached to the node; the world box is the model box
// transformed by the node's model to world matrix.
type BoundingBox struct {
	scene.BaseComponent

	modelBox     shape.Box
	worldBox     shape.Box
	invalidModel bool
	invalidWorld bool
	fixed        bool

	invalidated scene.Signal[func(*BoundingBox)]
	cancels     []scene.Cancel
}

// Create a bounding box computed from the geometry of its node.
func NewBoundingBox() *BoundingBox {
	return &BoundingBox{
		invalidModel: true,
		invalidWorld: true,
	}
}

// Create a bounding box with a fixed model space box. Geometry changes on
// the node are ignored.
func NewFixedBoundingBox(modelBox shape.Box) *BoundingBox {
	return &BoundingBox{
		modelBox:     modelBox,
		invalidWorld: true,
		fixed:        true,
	}
}

func (bb *BoundingBox) TargetAdded(target *scene.Node) error {
	if scene.HasComponentOf[*BoundingBox](target) {
		return ErrDuplicateBoundingBox
	}
	if err := bb.BaseComponent.TargetAdded(target); err != nil {
		return err
	}

	onGeometryChange := func(_, node *scene.Node, c scene.Component) {
		if _, isProvider := c.(scene.GeometryProvider); isProvider && node == target {
			bb.invalidate(true)
		}
	}
	bb.cancels = append(bb.cancels,
		target.OnComponentAdded(onGeometryChange),
		target.OnComponentRemoved(onGeometryChange),
		target.Data().OnPropertyChanged(scene.PropertyModelToWorld, func(*scene.Store, string) {
			bb.invalidate(false)
		}),
	)
	bb.invalidate(true)
	return nil
}

func (bb *BoundingBox) TargetRemoved(target *scene.Node) {
	for _, cancel := range bb.cancels {
		cancel()
	}
	bb.cancels = nil
	bb.BaseComponent.TargetRemoved(target)
	bb.invalidate(true)
}

// Fixed returns true if the model box was supplied at construction.
func (bb *BoundingBox) Fixed() bool {
	return bb.fixed
}

// Box returns the world space box.
func (bb *BoundingBox) Box() shape.Box {
	if bb.invalidWorld {
		bb.updateWorldSpaceBox()
	}
	return bb.worldBox
}

// ModelSpaceBox returns the model space box.
func (bb *BoundingBox) ModelSpaceBox() shape.Box {
	if bb.invalidModel && !bb.fixed {
		bb.updateModelSpaceBox()
	}
	return bb.modelBox
}

// Invalidate forces both boxes to be recomputed on next access.
func (bb *BoundingBox) Invalidate() {
	bb.invalidate(true)
}

// OnInvalidated registers fn to be called whenever the world box becomes
// stale.
func (bb *BoundingBox) OnInvalidated(fn func(*BoundingBox)) scene.Cancel {
	return bb.invalidated.Connect(fn)
}

func (bb *BoundingBox) invalidate(model bool) {
	if model {
		bb.invalidModel = true
	}
	bb.invalidWorld = true
	bb.invalidated.Emit(func(fn func(*BoundingBox)) { fn(bb) })
}

func (bb *BoundingBox) updateModelSpaceBox() {
	box := shape.EmptyBox()
	if target := bb.Target(); target != nil {
		for _, provider := range scene.ComponentsOf[scene.GeometryProvider](target) {
			box = shape.Merge(box, geometryBox(provider.Geometry()))
		}
	}

	// No geometry collapses to a point at the origin.
	if box.IsEmpty() {
		box = shape.Box{}
	}

	bb.modelBox = box
	bb.invalidModel = false
}

func (bb *BoundingBox) updateWorldSpaceBox() {
	bb.worldBox = bb.ModelSpaceBox()
	if target := bb.Target(); target != nil {
		if m, ok := target.Data().Mat4(scene.PropertyModelToWorld); ok {
			bb.worldBox = bb.worldBox.Transform(m)
		}
	}
	bb.invalidWorld = false
}

// geometryBox scans the position stream of g. Geometry without positions
// contributes a point at the origin.
func geometryBox(g *scene.Geometry) shape.Box {
	if g == nil {
		return shape.Box{}
	}
	attr, ok := g.Attribute(scene.AttributePosition)
	if !ok || g.VertexCount() == 0 {
		return shape.Box{}
	}

	box := shape.EmptyBox()
	for i := 0; i < g.VertexCount(); i++ {
		box = box.Extend(g.Vec3(attr, i))
	}
	return box
}
