package component

import (
	"testing"

	"github.com/achilleasa/octocull/scene"
	"github.com/achilleasa/octocull/shape"
	"github.com/achilleasa/octocull/types"
)

func TestBoundingBoxFromGeometry(t *testing.T) {
	n := scene.NewNode("mesh")
	bb := NewBoundingBox()
	if err := n.AddComponent(bb); err != nil {
		t.Fatal(err)
	}

	var invalidations int
	bb.OnInvalidated(func(*BoundingBox) { invalidations++ })

	expBox := shape.Box{}
	if got := bb.Box(); got != expBox {
		t.Fatalf("expected node without geometry to have a zero box; got %v", got)
	}

	n.AddComponent(scene.NewSurface("s", scene.NewPositionGeometry([]types.Vec3{
		{-1, -2, -3},
		{4, 5, 6},
		{0, 0, 0},
	})))

	expBox = shape.NewBox(types.Vec3{-1, -2, -3}, types.Vec3{4, 5, 6})
	if got := bb.ModelSpaceBox(); got != expBox {
		t.Fatalf("expected model box %v; got %v", expBox, got)
	}

	transform := scene.NewTransform(types.Translate4(types.Vec3{10, 0, 0}))
	n.AddComponent(transform)

	expBox = shape.NewBox(types.Vec3{9, -2, -3}, types.Vec3{14, 5, 6})
	if got := bb.Box(); got != expBox {
		t.Fatalf("expected world box %v; got %v", expBox, got)
	}

	transform.SetMatrix(types.Translate4(types.Vec3{0, 10, 0}))
	expBox = shape.NewBox(types.Vec3{-1, 8, -3}, types.Vec3{4, 15, 6})
	if got := bb.Box(); got != expBox {
		t.Fatalf("expected world box %v after moving; got %v", expBox, got)
	}

	// surface added, transform added, transform changed
	if invalidations != 3 {
		t.Fatalf("expected 3 invalidations; got %d", invalidations)
	}

	if err := n.AddComponent(NewBoundingBox()); err != ErrDuplicateBoundingBox {
		t.Fatalf("expected to get ErrDuplicateBoundingBox; got %v", err)
	}
}

func TestBoundingBoxDegenerateGeometry(t *testing.T) {
	n := scene.NewNode("mesh")
	n.AddComponent(scene.NewSurface("uv-only", scene.NewGeometry([]float32{7, 7}, scene.VertexAttribute{Name: "uv", Size: 2})))
	n.AddComponent(scene.NewSurface("empty", scene.NewPositionGeometry(nil)))
	n.AddComponent(scene.NewSurface("positioned", scene.NewPositionGeometry([]types.Vec3{{2, 2, 2}, {3, 3, 3}})))

	bb := NewBoundingBox()
	n.AddComponent(bb)

	expBox := shape.NewBox(types.Vec3{0, 0, 0}, types.Vec3{3, 3, 3})
	if got := bb.Box(); got != expBox {
		t.Fatalf("expected geometry without positions to contribute the origin; got %v", got)
	}
}

func TestFixedBoundingBox(t *testing.T) {
	fixed := shape.NewBox(types.Vec3{-1, -1, -1}, types.Vec3{1, 1, 1})
	bb := NewFixedBoundingBox(fixed)
	if !bb.Fixed() {
		t.Fatal("expected box to be fixed")
	}

	n := scene.NewNode("mesh")
	n.AddComponent(bb)
	n.AddComponent(scene.NewSurface("s", scene.NewPositionGeometry([]types.Vec3{{10, 10, 10}})))
	n.AddComponent(scene.NewTransform(types.Translate4(types.Vec3{0, 0, 5})))

	if got := bb.ModelSpaceBox(); got != fixed {
		t.Fatalf("expected fixed model box %v; got %v", fixed, got)
	}

	expBox := shape.NewBox(types.Vec3{-1, -1, 4}, types.Vec3{1, 1, 6})
	if got := bb.Box(); got != expBox {
		t.Fatalf("expected world box %v; got %v", expBox, got)
	}
}

func TestBoundingBoxDetach(t *testing.T) {
	n := scene.NewNode("mesh")
	bb := NewBoundingBox()
	n.AddComponent(bb)
	n.AddComponent(scene.NewSurface("s", scene.NewPositionGeometry([]types.Vec3{{1, 1, 1}, {2, 2, 2}})))
	bb.Box()

	var invalidations int
	bb.OnInvalidated(func(*BoundingBox) { invalidations++ })

	n.RemoveComponent(bb)
	if bb.Target() != nil {
		t.Fatal("expected detached bounding box to have no target")
	}

	// Listeners on the former node are disconnected.
	n.AddComponent(scene.NewTransform(types.Translate4(types.Vec3{1, 0, 0})))
	if invalidations != 1 {
		t.Fatalf("expected 1 invalidation; got %d", invalidations)
	}

	expBox := shape.Box{}
	if got := bb.Box(); got != expBox {
		t.Fatalf("expected detached bounding box to collapse to the origin; got %v", got)
	}
}

func shapeAt(center types.Vec3) shape.Box {
	half := types.Splat3(0.5)
	return shape.NewBox(center.Sub(half), center.Add(half))
}
