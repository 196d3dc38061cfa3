// Package shadow fits cascaded shadow maps to the camera, trims the world
// mesh down to the faces that can cast shadows, and owns the depth
// texture array the cascades render into.
package shadow

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// DefaultResolution is the default per-cascade shadow map resolution.
const DefaultResolution = 2048

// CascadedMap is a depth texture array with one layer per cascade and a
// framebuffer that renders into one layer at a time.
type CascadedMap struct {
	FBO          uint32
	DepthTexture uint32 // GL_TEXTURE_2D_ARRAY, sampled as sampler2DArrayShadow
	Resolution   int32
	Layers       int32
	prevViewport [4]int32
}

func depthFormat(bits int) (int32, error) {
	switch bits {
	case 16:
		return gl.DEPTH_COMPONENT16, nil
	case 24:
		return gl.DEPTH_COMPONENT24, nil
	case 32:
		return gl.DEPTH_COMPONENT32F, nil
	}
	return 0, fmt.Errorf("shadow map: unsupported depth precision %d", bits)
}

// NewCascadedMap allocates the depth array. A GL context must be current.
func NewCascadedMap(resolution, layers int32, depthBits int) (*CascadedMap, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if layers < 1 {
		return nil, fmt.Errorf("shadow map: %w", ErrInvalidCascades)
	}
	format, err := depthFormat(depthBits)
	if err != nil {
		return nil, err
	}

	sm := &CascadedMap{Resolution: resolution, Layers: layers}

	gl.GenTextures(1, &sm.DepthTexture)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, sm.DepthTexture)
	gl.TexImage3D(gl.TEXTURE_2D_ARRAY, 0, format, resolution, resolution, layers,
		0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)

	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Outside the cascade counts as lit
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	borderColor := []float32{1.0, 1.0, 1.0, 1.0}
	gl.TexParameterfv(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_BORDER_COLOR, &borderColor[0])

	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTextureLayer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, sm.DepthTexture, 0, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		sm.Destroy()
		return nil, fmt.Errorf("shadow map: framebuffer incomplete (status 0x%x)", status)
	}
	return sm, nil
}

// Begin saves the viewport and sets up depth-only rendering. The trimmed
// caster mesh only holds light-facing faces, so culling is off.
func (sm *CascadedMap) Begin() {
	gl.GetIntegerv(gl.VIEWPORT, &sm.prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.Viewport(0, 0, sm.Resolution, sm.Resolution)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.DEPTH_CLAMP)
	gl.Disable(gl.CULL_FACE)
}

// BindLayer attaches cascade layer as the depth target and clears it.
func (sm *CascadedMap) BindLayer(layer int32) {
	gl.FramebufferTextureLayer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, sm.DepthTexture, 0, layer)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

// End restores the default framebuffer, viewport and culling.
func (sm *CascadedMap) End() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(sm.prevViewport[0], sm.prevViewport[1], sm.prevViewport[2], sm.prevViewport[3])
	gl.Disable(gl.DEPTH_CLAMP)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
}

// BindTexture binds the depth array to a texture unit for sampling.
func (sm *CascadedMap) BindTexture(textureUnit uint32) {
	gl.ActiveTexture(textureUnit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, sm.DepthTexture)
}

// Destroy releases all GPU resources associated with this shadow map.
func (sm *CascadedMap) Destroy() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.DepthTexture != 0 {
		gl.DeleteTextures(1, &sm.DepthTexture)
		sm.DepthTexture = 0
	}
}

// IsValid returns true if the shadow map was created successfully.
func (sm *CascadedMap) IsValid() bool {
	return sm != nil && sm.FBO != 0 && sm.DepthTexture != 0
}
