package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepworld/internal/config"
	"github.com/Faultbox/stepworld/internal/engine/camera"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
	"github.com/Faultbox/stepworld/internal/game/world"
)

// Controls is one frame of player intent.
type Controls struct {
	Forward   float32 // +1 forward, -1 back
	Strafe    float32 // +1 right, -1 left
	Climb     float32 // Flying only
	LookX     float32 // Mouse motion in pixels
	LookY     float32
	Jump      bool
	Sprint    bool
	ToggleFly bool
}

// fovEase is how quickly the FOV follows sprinting, per second.
const fovEase = 8

// sprintFactor scales the move speed while sprinting.
const sprintFactor = 1.6

// Viewer turns controls into camera motion over the heightfield.
type Viewer struct {
	cfg    config.CameraConfig
	Camera *camera.Camera
	Walker *world.Walker
}

// NewViewer places the camera at eye looking down +X.
func NewViewer(cfg config.CameraConfig, heights *terrain.HeightGrid, eye mgl32.Vec3, aspect float32) *Viewer {
	far := terrain.FarClipDistance(heights, terrain.MaxJumpHeight(cfg.JumpVelocity, cfg.Gravity)+cfg.EyeHeight)
	walker := world.NewWalker(world.WalkerConfig{
		EyeHeight:    cfg.EyeHeight,
		JumpVelocity: cfg.JumpVelocity,
		Gravity:      cfg.Gravity,
		MoveSpeed:    cfg.MoveSpeed,
	}, heights, eye)

	return &Viewer{
		cfg:    cfg,
		Camera: camera.New(walker.Eye(), cfg.InitFOV, aspect, cfg.NearClip, far),
		Walker: walker,
	}
}

// Step advances the viewer by dt seconds and updates the camera.
func (v *Viewer) Step(dt float32, c Controls) {
	if c.ToggleFly {
		v.Walker.Flying = !v.Walker.Flying
	}

	v.Camera.Rotate(c.LookX*v.cfg.MouseSensitivity, -c.LookY*v.cfg.MouseSensitivity)

	sin, cos := math.Sincos(float64(v.Camera.Yaw))
	heading := mgl32.Vec3{float32(cos), 0, float32(sin)}
	right := mgl32.Vec3{-heading.Z(), 0, heading.X()}
	move := heading.Mul(c.Forward).Add(right.Mul(c.Strafe))
	if l := move.Len(); l > 1 {
		move = move.Mul(1 / l)
	}
	if c.Sprint {
		move = move.Mul(sprintFactor)
	}
	move[1] = c.Climb

	if c.Jump {
		v.Walker.Jump()
	}
	v.Walker.Update(dt, move)

	targetFOV := v.cfg.InitFOV
	if c.Sprint && (c.Forward != 0 || c.Strafe != 0) {
		targetFOV += v.cfg.FOVChange
	}
	blend := mgl32.Clamp(fovEase*dt, 0, 1)
	v.Camera.FOV += (targetFOV - v.Camera.FOV) * blend

	v.Camera.Pos = v.Walker.Eye()
	v.Camera.Update()
}

// Resize updates the projection aspect.
func (v *Viewer) Resize(width, height int) {
	if height > 0 {
		v.Camera.Aspect = float32(width) / float32(height)
		v.Camera.Update()
	}
}
