package shape

import (
	"fmt"

	"github.com/achilleasa/octocull/types"
	"github.com/chewxy/math32"
)

// Box is an axis-aligned bounding box. A box whose corners coincide is a
// valid box representing a single point.
type Box struct {
	BottomLeft types.Vec3
	TopRight   types.Vec3
}

// Create a new box from two opposite corners.
func NewBox(a, b types.Vec3) Box {
	return Box{
		BottomLeft: types.MinVec3(a, b),
		TopRight:   types.MaxVec3(a, b),
	}
}

// Create an empty box that can be grown with Extend. The corners are set to
// +inf/-inf so the first extended point becomes the box.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		BottomLeft: types.Splat3(inf),
		TopRight:   types.Splat3(-inf),
	}
}

// Merge returns the smallest box enclosing both a and b.
func Merge(a, b Box) Box {
	return Box{
		BottomLeft: types.MinVec3(a.BottomLeft, b.BottomLeft),
		TopRight:   types.MaxVec3(a.TopRight, b.TopRight),
	}
}

// IsEmpty returns true if the box has not been extended yet.
func (b Box) IsEmpty() bool {
	return b.BottomLeft[0] > b.TopRight[0] || b.BottomLeft[1] > b.TopRight[1] || b.BottomLeft[2] > b.TopRight[2]
}

// Extend returns a copy of the box grown to include p.
func (b Box) Extend(p types.Vec3) Box {
	return Box{
		BottomLeft: types.MinVec3(b.BottomLeft, p),
		TopRight:   types.MaxVec3(b.TopRight, p),
	}
}

func (b Box) Width() float32  { return b.TopRight[0] - b.BottomLeft[0] }
func (b Box) Height() float32 { return b.TopRight[1] - b.BottomLeft[1] }
func (b Box) Depth() float32  { return b.TopRight[2] - b.BottomLeft[2] }

// Get the box extent along each axis.
func (b Box) Size() types.Vec3 {
	return b.TopRight.Sub(b.BottomLeft)
}

// Get the box center.
func (b Box) Center() types.Vec3 {
	return b.BottomLeft.Add(b.TopRight).Mul(0.5)
}

// Contains returns true if p lies inside the box or on its boundary.
func (b Box) Contains(p types.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.BottomLeft[i] || p[i] > b.TopRight[i] {
			return false
		}
	}
	return true
}

// ContainsBox returns true if other lies entirely inside b.
func (b Box) ContainsBox(other Box) bool {
	return b.Contains(other.BottomLeft) && b.Contains(other.TopRight)
}

// Intersects returns true if the interiors of both boxes overlap. Boxes
// that only touch along a face do not intersect.
func (b Box) Intersects(other Box) bool {
	for i := 0; i < 3; i++ {
		if b.BottomLeft[i] >= other.TopRight[i] || b.TopRight[i] <= other.BottomLeft[i] {
			return false
		}
	}
	return true
}

// Distance returns the distance from p to the nearest point of the box.
// Points inside the box or on its boundary are at distance 0.
func (b Box) Distance(p types.Vec3) float32 {
	var sq float32
	for i := 0; i < 3; i++ {
		var d float32
		switch {
		case p[i] < b.BottomLeft[i]:
			d = b.BottomLeft[i] - p[i]
		case p[i] > b.TopRight[i]:
			d = p[i] - b.TopRight[i]
		}
		sq += d * d
	}
	return math32.Sqrt(sq)
}

// Vertices returns the 8 box corners. Corner i uses the top-right
// coordinate on X if bit 0 of i is set, on Y if bit 1 is set and on Z if
// bit 2 is set; corner 0 is BottomLeft and corner 7 is TopRight.
func (b Box) Vertices() [8]types.Vec3 {
	var out [8]types.Vec3
	for i := 0; i < 8; i++ {
		out[i] = b.BottomLeft
		if i&1 != 0 {
			out[i][0] = b.TopRight[0]
		}
		if i&2 != 0 {
			out[i][1] = b.TopRight[1]
		}
		if i&4 != 0 {
			out[i][2] = b.TopRight[2]
		}
	}
	return out
}

// Cast intersects ray with the box using the slab method and returns the
// nearest positive hit distance. Rays starting inside the box report the
// exit distance.
func (b *Box) Cast(ray Ray) (bool, float32) {
	tMin := math32.Inf(-1)
	tMax := math32.Inf(1)

	for i := 0; i < 3; i++ {
		if ray.Direction[i] == 0 {
			if ray.Origin[i] < b.BottomLeft[i] || ray.Origin[i] > b.TopRight[i] {
				return false, 0
			}
			continue
		}

		invDir := 1.0 / ray.Direction[i]
		t0 := (b.BottomLeft[i] - ray.Origin[i]) * invDir
		t1 := (b.TopRight[i] - ray.Origin[i]) * invDir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math32.Max(tMin, t0)
		tMax = math32.Min(tMax, t1)
		if tMin > tMax {
			return false, 0
		}
	}

	switch {
	case tMin > 0:
		return true, tMin
	case tMax > 0:
		return true, tMax
	}
	return false, 0
}

// TestBoundingBox classifies other against this box. A box lying entirely
// beyond one of the faces is reported as being outside that face, using
// the clip space convention where the near face is at -Z; a box
// enclosing this one is reported as Around and anything else as Inside.
func (b *Box) TestBoundingBox(other Box, basePlane int) (Position, int) {
	switch {
	case other.TopRight[0] < b.BottomLeft[0]:
		return Left, int(Left)
	case other.BottomLeft[1] > b.TopRight[1]:
		return Top, int(Top)
	case other.BottomLeft[0] > b.TopRight[0]:
		return Right, int(Right)
	case other.TopRight[1] < b.BottomLeft[1]:
		return Bottom, int(Bottom)
	case other.TopRight[2] < b.BottomLeft[2]:
		return Near, int(Near)
	case other.BottomLeft[2] > b.TopRight[2]:
		return Far, int(Far)
	}

	if other.ContainsBox(*b) && other != *b {
		return Around, basePlane
	}
	return Inside, basePlane
}

// UpdateFromMatrix replaces the box with the axis-aligned box enclosing its
// 8 corners transformed by m.
func (b *Box) UpdateFromMatrix(m types.Mat4) {
	if b.IsEmpty() {
		return
	}

	out := EmptyBox()
	for _, v := range b.Vertices() {
		out = out.Extend(m.MulPoint(v))
	}
	*b = out
}

// Transform returns a copy of the box transformed by m.
func (b Box) Transform(m types.Mat4) Box {
	b.UpdateFromMatrix(m)
	return b
}

func (*Box) sealed() {}

func (b Box) String() string {
	return fmt.Sprintf(
		"[(%3.3f, %3.3f, %3.3f) - (%3.3f, %3.3f, %3.3f)]",
		b.BottomLeft[0], b.BottomLeft[1], b.BottomLeft[2],
		b.TopRight[0], b.TopRight[1], b.TopRight[2],
	)
}
