package component

import (
	"github.com/achilleasa/octocull/scene"
	"github.com/achilleasa/octocull/types"
)

// Properties published by a camera on its node.
const (
	PropertyViewMatrix          = "viewMatrix"
	PropertyProjectionMatrix    = "projectionMatrix"
	PropertyWorldToScreenMatrix = "worldToScreenMatrix"
	PropertyEyePosition         = "eyePosition"
)

// The camera type controls the scene camera. While attached to a node it
// publishes its view, projection and world to screen matrices on the
// node's property store.
type Camera struct {
	scene.BaseComponent

	position types.Vec3
	lookAt   types.Vec3
	up       types.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMat types.Mat4
	projMat types.Mat4
}

func NewCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{
		position: types.Vec3{0, 0, 0},
		lookAt:   types.Vec3{0, 0, -1},
		up:       types.Vec3{0, 1, 0},
	}
	c.SetProjection(fov, aspect, near, far)
	return c
}

func (c *Camera) TargetAdded(target *scene.Node) error {
	if scene.HasComponentOf[*Camera](target) {
		return ErrDuplicateCamera
	}
	if err := c.BaseComponent.TargetAdded(target); err != nil {
		return err
	}
	c.publish()
	return nil
}

func (c *Camera) TargetRemoved(target *scene.Node) {
	c.BaseComponent.TargetRemoved(target)
	for _, name := range []string{PropertyEyePosition, PropertyViewMatrix, PropertyProjectionMatrix, PropertyWorldToScreenMatrix} {
		target.Data().Unset(name)
	}
}

// Setup camera projection matrix. The fov is specified in degrees.
func (c *Camera) SetProjection(fov, aspect, near, far float32) {
	c.fov, c.aspect, c.near, c.far = fov, aspect, near, far
	c.projMat = types.Perspective4(fov, aspect, near, far)
	c.update()
}

// Point the camera from eye towards target.
func (c *Camera) LookAt(eye, target, up types.Vec3) {
	c.position, c.lookAt, c.up = eye, target, up
	c.update()
}

// Orbit rotates the eye position around the look-at point by angle radians
// about the camera up axis.
func (c *Camera) Orbit(angle float32) {
	q := types.QuatFromAxisAngle(c.up, angle)
	c.position = c.lookAt.Add(q.Rotate(c.position.Sub(c.lookAt)))
	c.update()
}

// Rotate the view direction by pitch and yaw radians keeping the eye fixed.
func (c *Camera) Rotate(pitch, yaw float32) {
	dir := c.lookAt.Sub(c.position).Normalize()
	pitchQuat := types.QuatFromAxisAngle(dir.Cross(c.up), pitch)
	yawQuat := types.QuatFromAxisAngle(c.up, yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()
	c.lookAt = c.position.Add(orientQuat.Rotate(dir))
	c.update()
}

func (c *Camera) Position() types.Vec3 {
	return c.position
}

// Focus returns the point the camera looks at.
func (c *Camera) Focus() types.Vec3 {
	return c.lookAt
}

func (c *Camera) FOV() float32 {
	return c.fov
}

func (c *Camera) ViewMatrix() types.Mat4 {
	return c.viewMat
}

func (c *Camera) ProjectionMatrix() types.Mat4 {
	return c.projMat
}

// WorldToScreenMatrix returns projection * view.
func (c *Camera) WorldToScreenMatrix() types.Mat4 {
	return c.projMat.Mul4(c.viewMat)
}

func (c *Camera) InvViewProjMat() types.Mat4 {
	return c.WorldToScreenMatrix().Inv()
}

func (c *Camera) update() {
	c.viewMat = types.LookAtV(c.position, c.lookAt, c.up)
	c.publish()
}

func (c *Camera) publish() {
	node := c.Target()
	if node == nil {
		return
	}
	store := node.Data()
	store.Set(PropertyEyePosition, c.position)
	store.Set(PropertyViewMatrix, c.viewMat)
	store.Set(PropertyProjectionMatrix, c.projMat)
	store.Set(PropertyWorldToScreenMatrix, c.WorldToScreenMatrix())
}
