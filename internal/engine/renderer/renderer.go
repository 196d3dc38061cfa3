// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/stepworld/internal/engine/camera"
	"github.com/Faultbox/stepworld/internal/engine/renderer/shaders"
	"github.com/Faultbox/stepworld/internal/engine/scene"
	"github.com/Faultbox/stepworld/internal/engine/shader"
	"github.com/Faultbox/stepworld/internal/engine/shadow"
	"github.com/Faultbox/stepworld/internal/engine/visibility"
	"github.com/Faultbox/stepworld/internal/logger"
)

// MaxCascades matches the uniform arrays of the world shader.
const MaxCascades = 4

// ErrTooManyCascades is returned when the shader cannot sample every cascade.
var ErrTooManyCascades = errors.New("renderer: too many shadow cascades")

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	VSync  bool

	NumCascades      int
	ShadowResolution int
	DepthBits        int
	DepthBias        float32
}

// Renderer handles all OpenGL rendering. It also serves as the scene's
// Device, owning the buffers a scene.World streams into.
type Renderer struct {
	config Config

	worldProgram     uint32
	locViewProj      int32
	locView          int32
	locToLight       int32
	locAmbient       int32
	locMaterials     int32
	locNumCascades   int32
	locSplits        int32
	locLightViewProj int32
	locShadowMap     int32
	locDepthBias     int32

	depthProgram          uint32
	locDepthLightViewProj int32

	shadowMap  *shadow.CascadedMap
	stream     *StreamBuffer
	shadowMesh *StaticMesh

	palette [MaterialCount]mgl32.Vec3
	ambient mgl32.Vec3
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.NumCascades > MaxCascades {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCascades, cfg.NumCascades, MaxCascades)
	}
	if cfg.DepthBias == 0 {
		cfg.DepthBias = 0.0015
	}

	r := &Renderer{
		config:  cfg,
		palette: MaterialPalette(),
		ambient: mgl32.Vec3{0.25, 0.27, 0.32},
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// World faces wind counter-clockwise seen from outside
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.ClearColor(0.53, 0.68, 0.86, 1.0) // Sky

	if err := r.createPrograms(); err != nil {
		r.Close()
		return nil, err
	}

	var err error
	r.shadowMap, err = shadow.NewCascadedMap(int32(cfg.ShadowResolution), int32(cfg.NumCascades), cfg.DepthBits)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("creating shadow map: %w", err)
	}

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

func (r *Renderer) createPrograms() error {
	program, err := shader.CompileProgram(shaders.WorldVertexShader, shaders.WorldFragmentShader)
	if err != nil {
		return fmt.Errorf("world shader: %w", err)
	}
	r.worldProgram = program
	u := shader.NewUniforms(program)
	r.locViewProj = u.Required("uViewProj")
	r.locView = u.Optional("uView")
	r.locToLight = u.Optional("uToLight")
	r.locAmbient = u.Optional("uAmbient")
	r.locMaterials = u.Required("uMaterials")
	r.locNumCascades = u.Optional("uNumCascades")
	r.locSplits = u.Optional("uSplits")
	r.locLightViewProj = u.Required("uLightViewProj")
	r.locShadowMap = u.Required("uShadowMap")
	r.locDepthBias = u.Optional("uDepthBias")
	if err := u.Err(); err != nil {
		return fmt.Errorf("world shader: %w", err)
	}

	program, err = shader.CompileProgram(shaders.DepthVertexShader, shaders.DepthFragmentShader)
	if err != nil {
		return fmt.Errorf("depth shader: %w", err)
	}
	r.depthProgram = program
	u = shader.NewUniforms(program)
	r.locDepthLightViewProj = u.Required("uLightViewProj")
	if err := u.Err(); err != nil {
		return fmt.Errorf("depth shader: %w", err)
	}

	logger.Debug("shader programs created",
		zap.Uint32("world", r.worldProgram),
		zap.Uint32("depth", r.depthProgram))
	return nil
}

// NewStreamBuffer implements scene.Device. The renderer keeps one stream
// buffer; a new one replaces the last.
func (r *Renderer) NewStreamBuffer(faces int) (visibility.Buffer, error) {
	buf, err := NewStreamBuffer(faces)
	if err != nil {
		return nil, err
	}
	if r.stream != nil {
		r.stream.Destroy()
	}
	r.stream = buf
	return buf, nil
}

// UploadShadowMesh implements scene.Device.
func (r *Renderer) UploadShadowMesh(quads []shadow.ShadowQuad) error {
	mesh, err := NewStaticMesh(quads)
	if err != nil {
		return err
	}
	if r.shadowMesh != nil {
		r.shadowMesh.Destroy()
	}
	r.shadowMesh = mesh
	return nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.stream != nil {
		r.stream.Destroy()
	}
	if r.shadowMesh != nil {
		r.shadowMesh.Destroy()
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.worldProgram != 0 {
		gl.DeleteProgram(r.worldProgram)
	}
	if r.depthProgram != 0 {
		gl.DeleteProgram(r.depthProgram)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {}

// ReadPixels reads the default framebuffer back as bottom-up RGBA rows.
// Call it after Render and before the buffers are swapped.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// Render draws the shadow cascades and then the world. Passes with
// nothing to draw are skipped, but every cascade layer is still cleared.
func (r *Renderer) Render(f scene.Frame, cam *camera.Camera) {
	r.renderShadows(f)
	r.renderWorld(f, cam)
}

func (r *Renderer) renderShadows(f scene.Frame) {
	r.shadowMap.Begin()
	gl.UseProgram(r.depthProgram)
	for i := range f.LightViewProjection {
		r.shadowMap.BindLayer(int32(i))
		if f.Shadow.Empty() || r.shadowMesh == nil {
			continue
		}
		gl.UniformMatrix4fv(r.locDepthLightViewProj, 1, false, &f.LightViewProjection[i][0])
		r.shadowMesh.Draw(f.Shadow)
	}
	r.shadowMap.End()
}

func (r *Renderer) renderWorld(f scene.Frame, cam *camera.Camera) {
	if f.Main.Empty() || r.stream == nil {
		return
	}

	gl.UseProgram(r.worldProgram)
	gl.UniformMatrix4fv(r.locViewProj, 1, false, &cam.ViewProjection[0])
	gl.UniformMatrix4fv(r.locView, 1, false, &cam.View[0])
	gl.Uniform3fv(r.locToLight, 1, &f.ToLight[0])
	gl.Uniform3fv(r.locAmbient, 1, &r.ambient[0])
	gl.Uniform3fv(r.locMaterials, MaterialCount, &r.palette[0][0])

	gl.Uniform1i(r.locNumCascades, int32(len(f.LightViewProjection)))
	if len(f.Splits) > 0 {
		gl.Uniform1fv(r.locSplits, int32(len(f.Splits)), &f.Splits[0])
	}
	if len(f.LightViewProjection) > 0 {
		gl.UniformMatrix4fv(r.locLightViewProj, int32(len(f.LightViewProjection)), false, &f.LightViewProjection[0][0])
	}
	gl.Uniform1f(r.locDepthBias, r.config.DepthBias)

	r.shadowMap.BindTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locShadowMap, 0)

	r.stream.Draw(f.Main)
}
