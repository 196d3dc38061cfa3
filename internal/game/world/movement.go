// Package world moves the viewer over the heightfield.
package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// WalkerConfig holds the movement constants.
type WalkerConfig struct {
	EyeHeight    float32
	JumpVelocity float32
	Gravity      float32
	MoveSpeed    float32 // Cells per second
}

// Walker is a point on the heightfield with vertical velocity. Feet rest
// on the top of the cell below; walls taller than the feet block
// horizontal movement one axis at a time, so the walker slides along
// them.
type Walker struct {
	config  WalkerConfig
	heights *terrain.HeightGrid

	Feet      mgl32.Vec3
	VelocityY float32
	Grounded  bool
	Flying    bool // Ignores gravity and walls
}

// NewWalker places a walker with its eye at eye.
func NewWalker(cfg WalkerConfig, heights *terrain.HeightGrid, eye mgl32.Vec3) *Walker {
	w := &Walker{
		config:  cfg,
		heights: heights,
		Feet:    eye.Sub(mgl32.Vec3{0, cfg.EyeHeight, 0}),
	}
	if ground := w.groundAt(w.Feet.X(), w.Feet.Z()); w.Feet.Y() < ground {
		w.Feet[1] = ground
		w.Grounded = true
	}
	return w
}

// Eye returns the camera position.
func (w *Walker) Eye() mgl32.Vec3 {
	return w.Feet.Add(mgl32.Vec3{0, w.config.EyeHeight, 0})
}

// Jump starts a jump if the walker stands on the ground.
func (w *Walker) Jump() bool {
	if !w.Grounded || w.Flying {
		return false
	}
	w.VelocityY = w.config.JumpVelocity
	w.Grounded = false
	return true
}

// Update moves the walker by dt seconds. move is the horizontal velocity
// in units of MoveSpeed (X and Z are used). In flying mode move.Y climbs.
func (w *Walker) Update(dt float32, move mgl32.Vec3) {
	step := mgl32.Vec2{move.X(), move.Z()}.Mul(w.config.MoveSpeed * dt)

	if w.Flying {
		w.Feet = w.Feet.Add(mgl32.Vec3{step.X(), move.Y() * w.config.MoveSpeed * dt, step.Y()})
		w.VelocityY = 0
		w.Grounded = false
		return
	}

	// Slide: try each axis on its own
	if nx := w.clampX(w.Feet.X() + step.X()); w.canStand(nx, w.Feet.Z()) {
		w.Feet[0] = nx
	}
	if nz := w.clampZ(w.Feet.Z() + step.Y()); w.canStand(w.Feet.X(), nz) {
		w.Feet[2] = nz
	}

	w.VelocityY -= w.config.Gravity * dt
	w.Feet[1] += w.VelocityY * dt

	ground := w.groundAt(w.Feet.X(), w.Feet.Z())
	if w.Feet.Y() <= ground {
		w.Feet[1] = ground
		w.VelocityY = 0
		w.Grounded = true
	} else {
		w.Grounded = false
	}
}

func (w *Walker) canStand(x, z float32) bool {
	return w.groundAt(x, z) <= w.Feet.Y()
}

func (w *Walker) groundAt(x, z float32) float32 {
	cx := int(math.Floor(float64(x)))
	cz := int(math.Floor(float64(z)))
	return float32(w.heights.At(cx, cz))
}

// Keep the walker a hair inside the grid so it never stands on a missing cell
const edgeMargin = 1e-3

func (w *Walker) clampX(x float32) float32 {
	return mgl32.Clamp(x, 0, float32(w.heights.Width())-edgeMargin)
}

func (w *Walker) clampZ(z float32) float32 {
	return mgl32.Clamp(z, 0, float32(w.heights.Depth())-edgeMargin)
}
