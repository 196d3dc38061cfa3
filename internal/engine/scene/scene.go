// Package scene ties a compiled world to the per-frame work: streaming
// the visible sectors, moving the light and fitting the shadow cascades.
package scene

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/stepworld/internal/engine/camera"
	"github.com/Faultbox/stepworld/internal/engine/lighting"
	"github.com/Faultbox/stepworld/internal/engine/shadow"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
	"github.com/Faultbox/stepworld/internal/engine/visibility"
	"github.com/Faultbox/stepworld/internal/logger"
)

// Device allocates the GPU-side storage a World draws from.
type Device interface {
	// NewStreamBuffer returns a mappable buffer holding faces faces.
	NewStreamBuffer(faces int) (visibility.Buffer, error)
	// UploadShadowMesh stores the caster mesh once, for every frame.
	UploadShadowMesh(quads []shadow.ShadowQuad) error
}

// Frame is everything the renderer needs to draw one frame.
type Frame struct {
	Main                visibility.DrawRange // Faces in the stream buffer
	Shadow              visibility.DrawRange // Faces in the static caster mesh
	LightViewProjection []mgl32.Mat4
	Splits              []float32
	ToLight             mgl32.Vec3
}

// Stats describes a loaded world.
type Stats struct {
	terrain.Stats
	ShadowFaces int
}

// World is a compiled world bound to a device.
type World struct {
	world    *terrain.World
	light    *lighting.DynamicLight
	streamer *visibility.Streamer
	cascades *shadow.CascadedContext
	shadow   visibility.DrawRange
}

// New trims the caster mesh for the light's whole swing, uploads it, and
// allocates a stream buffer large enough for the full world mesh.
func New(world *terrain.World, light *lighting.DynamicLight, cfg shadow.CascadeConfig, dev Device) (*World, error) {
	cascades, err := shadow.NewCascadedContext(cfg)
	if err != nil {
		return nil, err
	}

	from, to := light.Extremes()
	casters := shadow.TrimForShadow(world.Mesh, world.Edges, from, to)
	if err := dev.UploadShadowMesh(casters); err != nil {
		return nil, fmt.Errorf("uploading shadow mesh: %w", err)
	}

	buf, err := dev.NewStreamBuffer(len(world.Mesh))
	if err != nil {
		return nil, fmt.Errorf("creating world buffer: %w", err)
	}

	logger.Info("scene ready",
		zap.Int("faces", len(world.Mesh)),
		zap.Int("shadow_faces", len(casters)),
		zap.Int("cascades", cfg.NumCascades))

	return &World{
		world:    world,
		light:    light,
		streamer: visibility.NewStreamer(world.Sectors, world.Mesh, buf),
		cascades: cascades,
		shadow:   visibility.DrawRange{Count: len(casters)},
	}, nil
}

// Frame streams the visible world for cam and fits the cascades for the
// light direction at time t. cam must be updated. The returned slices are
// reused by the next call.
func (w *World) Frame(cam *camera.Camera, t time.Duration) (Frame, error) {
	main, err := w.streamer.Stream(cam)
	if err != nil {
		return Frame{}, err
	}

	toLight := w.light.Direction(t)
	w.cascades.Update(cam, toLight)

	logger.Debug("frame",
		zap.Int("faces", main.Count),
		zap.Int("sectors", w.streamer.VisibleSectors()),
		zap.Int("runs", w.streamer.Runs()))

	return Frame{
		Main:                main,
		Shadow:              w.shadow,
		LightViewProjection: w.cascades.LightViewProjection,
		Splits:              w.cascades.Splits,
		ToLight:             toLight,
	}, nil
}

// Stats returns the world and caster mesh sizes.
func (w *World) Stats() Stats {
	return Stats{Stats: w.world.Stats(), ShadowFaces: w.shadow.Count}
}

// FarClip returns the far plane distance that keeps the whole world in
// view from any reachable eye position.
func (w *World) FarClip(jumpVelocity, gravity, eyeHeight float32) float32 {
	return terrain.FarClipDistance(w.world.Heights, terrain.MaxJumpHeight(jumpVelocity, gravity)+eyeHeight)
}
