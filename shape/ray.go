package shape

import "github.com/achilleasa/octocull/types"

// A ray with an origin and a (normalized) direction.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// Create a new ray. The direction is normalized.
func NewRay(origin, direction types.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
