package shape

import (
	"fmt"

	"github.com/achilleasa/octocull/types"
	"github.com/chewxy/math32"
)

// Frustum is a convex volume bounded by six inward facing planes extracted
// from a view-projection matrix. Planes are stored as (a, b, c, d) so that
// a point p is on the inner side when a*p.x + b*p.y + c*p.z + d >= 0. The
// plane at index i bounds the side identified by Position(i).
type Frustum struct {
	planes [NumPlanes]types.Vec4

	// World-space frustum corners; only valid for invertible matrices.
	corners      [8]types.Vec3
	validCorners bool

	planeTests int
}

// Create a frustum matching the canonical clip volume.
func NewFrustum() *Frustum {
	f := &Frustum{}
	f.UpdateFromMatrix(types.Ident4())
	return f
}

// Create a frustum from a view-projection matrix.
func NewFrustumFromMatrix(viewProjection types.Mat4) *Frustum {
	f := &Frustum{}
	f.UpdateFromMatrix(viewProjection)
	return f
}

// Plane returns the normalized equation of a frustum plane.
func (f *Frustum) Plane(id Position) types.Vec4 {
	return f.planes[id]
}

// PlaneTests returns the number of planes evaluated by TestBoundingBox
// since the frustum was created.
func (f *Frustum) PlaneTests() int {
	return f.planeTests
}

// Corners returns the 8 world-space frustum corners using the same ordering
// as Box.Vertices (bit 0: right, bit 1: top, bit 2: far). The second result
// is false if the source matrix was not invertible.
func (f *Frustum) Corners() ([8]types.Vec3, bool) {
	return f.corners, f.validCorners
}

// UpdateFromMatrix rebuilds all planes from a view-projection matrix using
// the Gribb/Hartmann method. For a matrix M mapping world space to clip
// space the planes are row3 +/- row0 (left/right), row3 +/- row1
// (bottom/top) and row3 +/- row2 (near/far).
func (f *Frustum) UpdateFromMatrix(viewProjection types.Mat4) {
	r0 := viewProjection.Row(0)
	r1 := viewProjection.Row(1)
	r2 := viewProjection.Row(2)
	r3 := viewProjection.Row(3)

	f.planes[Left] = normalizePlane(r3.Add(r0))
	f.planes[Right] = normalizePlane(r3.Sub(r0))
	f.planes[Bottom] = normalizePlane(r3.Add(r1))
	f.planes[Top] = normalizePlane(r3.Sub(r1))
	f.planes[Near] = normalizePlane(r3.Add(r2))
	f.planes[Far] = normalizePlane(r3.Sub(r2))

	f.validCorners = viewProjection.Det() != 0
	if !f.validCorners {
		return
	}

	inv := viewProjection.Inv()
	for i := 0; i < 8; i++ {
		ndc := types.Vec3{-1, -1, -1}
		if i&1 != 0 {
			ndc[0] = 1
		}
		if i&2 != 0 {
			ndc[1] = 1
		}
		if i&4 != 0 {
			ndc[2] = 1
		}
		f.corners[i] = inv.MulPoint(ndc)
	}
}

// TestBoundingBox classifies box against the frustum. Planes are tested
// cyclically starting at basePlane; the first plane with all 8 box corners
// on its outer side rejects the box and its id is returned both as the
// position and as the plane to start the next test from. Boxes that are
// not rejected are reported as Around if they enclose the whole frustum
// and as Inside otherwise. Corners lying exactly on a plane count as inside.
func (f *Frustum) TestBoundingBox(box Box, basePlane int) (Position, int) {
	basePlane = ((basePlane % NumPlanes) + NumPlanes) % NumPlanes
	vertices := box.Vertices()

	for i := 0; i < NumPlanes; i++ {
		planeID := (basePlane + i) % NumPlanes
		plane := f.planes[planeID]
		f.planeTests++

		rejected := true
		for _, v := range vertices {
			if plane.PlaneDist(v) >= 0 {
				rejected = false
				break
			}
		}

		if rejected {
			return Position(planeID), planeID
		}
	}

	if f.validCorners && f.enclosedBy(box) {
		return Around, basePlane
	}
	return Inside, basePlane
}

// enclosedBy returns true if box spans the frustum on all three axes.
func (f *Frustum) enclosedBy(box Box) bool {
	for _, c := range f.corners {
		if !box.Contains(c) {
			return false
		}
	}
	return true
}

// ContainsPoint returns true if p lies inside the frustum or on its boundary.
func (f *Frustum) ContainsPoint(p types.Vec3) bool {
	for _, plane := range f.planes {
		if plane.PlaneDist(p) < 0 {
			return false
		}
	}
	return true
}

// Cast clips ray against the six planes and returns the nearest positive
// distance at which it enters (or, when starting inside, exits) the frustum.
func (f *Frustum) Cast(ray Ray) (bool, float32) {
	tMin := math32.Inf(-1)
	tMax := math32.Inf(1)

	for _, plane := range f.planes {
		dist := plane.PlaneDist(ray.Origin)
		denom := plane.Vec3().Dot(ray.Direction)

		if denom == 0 {
			if dist < 0 {
				return false, 0
			}
			continue
		}

		t := -dist / denom
		if denom > 0 {
			tMin = math32.Max(tMin, t)
		} else {
			tMax = math32.Min(tMax, t)
		}

		if tMin > tMax {
			return false, 0
		}
	}

	switch {
	case tMin > 0:
		return true, tMin
	case tMax > 0 && !math32.IsInf(tMax, 1):
		return true, tMax
	}
	return false, 0
}

func (*Frustum) sealed() {}

func (f *Frustum) String() string {
	out := "Frustum planes:"
	for id, p := range f.planes {
		out += fmt.Sprintf("\n%-6s : (%3.3f, %3.3f, %3.3f, %3.3f)", Position(id), p[0], p[1], p[2], p[3])
	}
	return out
}

func normalizePlane(p types.Vec4) types.Vec4 {
	l := p.Vec3().Len()
	if l == 0 {
		return p
	}
	return p.Mul(1.0 / l)
}
