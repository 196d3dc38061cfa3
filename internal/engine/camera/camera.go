// Package camera provides the first-person camera the world is viewed
// and culled with.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch keeps the view direction away from the world up axis.
const MaxPitch = math.Pi/2 - 0.01

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera holds the per-frame camera state. Matrices and the frustum are
// only valid after Update.
type Camera struct {
	Pos   mgl32.Vec3
	Yaw   float32 // Radians around +Y; 0 looks down +X
	Pitch float32 // Radians above the horizon

	Dir   mgl32.Vec3
	Right mgl32.Vec3
	Up    mgl32.Vec3

	FOV    float32 // Vertical field of view, radians
	Aspect float32
	Near   float32
	Far    float32

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4
	Frustum        Frustum
}

// New creates a camera at pos and computes its matrices.
func New(pos mgl32.Vec3, fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Pos:    pos,
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.Update()
	return c
}

// Rotate turns the camera by the given yaw and pitch deltas. Pitch is
// clamped to MaxPitch either way.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -MaxPitch, MaxPitch)
}

// Move translates the camera along its horizontal heading. up moves
// along the world Y axis.
func (c *Camera) Move(forward, right, up float32) {
	sin, cos := math.Sincos(float64(c.Yaw))
	heading := mgl32.Vec3{float32(cos), 0, float32(sin)}
	side := heading.Cross(worldUp)

	c.Pos = c.Pos.
		Add(heading.Mul(forward)).
		Add(side.Mul(right)).
		Add(worldUp.Mul(up))
}

// Update recomputes the basis vectors, matrices and frustum planes from
// the position, angles and projection parameters.
func (c *Camera) Update() {
	c.Dir = Direction(c.Yaw, c.Pitch)
	c.Right = c.Dir.Cross(worldUp).Normalize()
	c.Up = c.Right.Cross(c.Dir)

	c.View = mgl32.LookAtV(c.Pos, c.Pos.Add(c.Dir), c.Up)
	c.Projection = mgl32.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
	c.ViewProjection = c.Projection.Mul4(c.View)
	c.Frustum = ExtractFrustum(c.ViewProjection)
}

// Direction returns the unit view direction for a yaw and pitch.
func Direction(yaw, pitch float32) mgl32.Vec3 {
	sy, cy := math.Sincos(float64(yaw))
	sp, cp := math.Sincos(float64(pitch))
	return mgl32.Vec3{float32(cp * cy), float32(sp), float32(cp * sy)}
}
