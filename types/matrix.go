package types

import "github.com/go-gl/mathgl/mgl32"

// A 4x4 matrix stored in column-major order. Matrix operations are
// delegated to mgl32 which shares the same memory layout.
type Mat4 mgl32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Create a scale matrix.
func Scale4(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Create a rotation matrix around an axis. The angle is specified in radians.
func Rotate4(angle float32, axis Vec3) Mat4 {
	return Mat4(mgl32.HomogRotate3D(angle, mgl32.Vec3(axis.Normalize())))
}

// Create a perspective projection matrix. The fov is specified in degrees.
func Perspective4(fovDeg, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far))
}

// Create a view matrix for an eye looking at center.
func LookAtV(eye, center, up Vec3) Mat4 {
	return Mat4(mgl32.LookAtV(mgl32.Vec3(eye), mgl32.Vec3(center), mgl32.Vec3(up)))
}

// Multiply with another matrix.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply with a 4 component column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Transform a point (w = 1) applying the perspective divide when the
// transformation is projective.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	if v[3] != 0 && v[3] != 1 {
		return v.Vec3().Mul(1.0 / v[3])
	}
	return v.Vec3()
}

// Get a matrix row.
func (m Mat4) Row(row int) Vec4 {
	return Vec4(mgl32.Mat4(m).Row(row))
}

// Get the matrix determinant.
func (m Mat4) Det() float32 {
	return mgl32.Mat4(m).Det()
}

// Invert matrix. Singular matrices yield a zero matrix.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Get the translation part of an affine matrix.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Check whether two matrices are equal within floatCmpEpsilon.
func (m Mat4) ApproxEqual(m2 Mat4) bool {
	return mgl32.Mat4(m).ApproxEqualThreshold(mgl32.Mat4(m2), floatCmpEpsilon)
}
