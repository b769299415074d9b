// Package shape implements the bounding volumes used for visibility tests:
// axis-aligned boxes, view frustums and rays.
package shape

import (
	"fmt"

	"github.com/achilleasa/octocull/types"
)

// Position describes where a box lies relative to a Shape. The values
// Left to Far double as plane identifiers for frustum planes.
type Position uint8

const (
	Left Position = iota
	Top
	Right
	Bottom
	Near
	Far
	Around
	Inside
)

// The number of clip planes that bound a shape.
const NumPlanes = 6

// Outside returns true if p identifies a rejecting plane.
func (p Position) Outside() bool {
	return p < Around
}

func (p Position) String() string {
	switch p {
	case Left:
		return "left"
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Near:
		return "near"
	case Far:
		return "far"
	case Around:
		return "around"
	case Inside:
		return "inside"
	}
	return fmt.Sprintf("position(%d)", uint8(p))
}

// Shape is implemented by *Box and *Frustum only.
type Shape interface {
	// Classify box relative to this shape. Planes are evaluated starting at
	// basePlane; the returned plane id should be passed as the basePlane of
	// the next test on a nearby box.
	TestBoundingBox(box Box, basePlane int) (Position, int)

	// Intersect a ray with the shape and return the nearest positive hit distance.
	Cast(ray Ray) (bool, float32)

	// Recompute the shape from a transformation matrix.
	UpdateFromMatrix(m types.Mat4)

	sealed()
}
