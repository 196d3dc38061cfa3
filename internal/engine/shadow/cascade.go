package shadow

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepworld/internal/engine/camera"
)

// Cascade setup errors.
var (
	ErrInvalidCascades   = errors.New("shadow: at least one cascade is required")
	ErrInvalidResolution = errors.New("shadow: resolution must be positive")
)

// CascadeConfig is the fixed part of a CascadedContext.
type CascadeConfig struct {
	NumCascades       int
	Resolution        int
	SubFrustumScale   float32
	LinearSplitWeight float32 // 0 is fully logarithmic, 1 fully linear
	AverageFOV        float32 // Radians; cascades ignore the live camera FOV
}

// CascadedContext fits one light-space projection per depth slice of the
// camera frustum. Splits and matrices are rewritten by every Update.
type CascadedContext struct {
	CascadeConfig

	Splits              []float32 // NumCascades-1 split distances
	LightViewProjection []mgl32.Mat4
	Radii               []float32 // Half-extent of each cascade's ortho box
}

// NewCascadedContext validates cfg and allocates the per-cascade slices.
func NewCascadedContext(cfg CascadeConfig) (*CascadedContext, error) {
	if cfg.NumCascades < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCascades, cfg.NumCascades)
	}
	if cfg.Resolution <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResolution, cfg.Resolution)
	}
	if cfg.SubFrustumScale <= 0 {
		cfg.SubFrustumScale = 1
	}
	return &CascadedContext{
		CascadeConfig:       cfg,
		Splits:              make([]float32, cfg.NumCascades-1),
		LightViewProjection: make([]mgl32.Mat4, cfg.NumCascades),
		Radii:               make([]float32, cfg.NumCascades),
	}, nil
}

// Update recomputes the splits and the light matrices for the camera's
// current view. toLight is the unit direction towards the light.
func (c *CascadedContext) Update(cam *camera.Camera, toLight mgl32.Vec3) {
	SplitDistances(cam.Near, cam.Far, c.LinearSplitWeight, c.Splits)

	for i := range c.NumCascades {
		subNear, subFar := cam.Near, cam.Far
		if i > 0 {
			subNear = c.Splits[i-1]
		}
		if i < len(c.Splits) {
			subFar = c.Splits[i]
		}

		proj := mgl32.Perspective(c.AverageFOV, cam.Aspect, subNear, subFar)
		corners := FrustumCorners(proj.Mul4(cam.View).Inv())
		center := centroid(corners)

		radius := BoundingRadius(subNear, subFar, c.AverageFOV, cam.Aspect) * c.SubFrustumScale
		view := lightView(center, toLight)

		// Quantize the light-space origin to whole shadow map texels
		texel := 2 * radius / float32(c.Resolution)
		view[12] = SnapToTexel(view[12], texel)
		view[13] = SnapToTexel(view[13], texel)

		c.Radii[i] = radius
		c.LightViewProjection[i] = mgl32.Ortho(-radius, radius, -radius, radius, -radius, radius).Mul4(view)
	}
}

// SplitDistances fills out with the len(out) split distances between
// near and far, blending a logarithmic and a linear distribution. Split i
// sits at fraction (i+1)/(len(out)+1) of the range.
func SplitDistances(near, far, linearWeight float32, out []float32) {
	n := float64(len(out) + 1)
	for i := range out {
		p := float64(i+1) / n
		logSplit := float64(near) * math.Pow(float64(far/near), p)
		linSplit := float64(near) + p*float64(far-near)
		out[i] = float32(logSplit + float64(linearWeight)*(linSplit-logSplit))
	}
}

// FrustumCorners unprojects the eight NDC cube corners through the
// inverse of a view-projection matrix.
func FrustumCorners(invViewProj mgl32.Mat4) [8]mgl32.Vec3 {
	var corners [8]mgl32.Vec3
	i := 0
	for _, x := range [2]float32{-1, 1} {
		for _, y := range [2]float32{-1, 1} {
			for _, z := range [2]float32{-1, 1} {
				p := invViewProj.Mul4x1(mgl32.Vec4{x, y, z, 1})
				corners[i] = p.Vec3().Mul(1 / p.W())
				i++
			}
		}
	}
	return corners
}

func centroid(points [8]mgl32.Vec3) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / 8)
}

// BoundingRadius is the distance from the centroid of a symmetric
// perspective frustum slice to its far corners.
func BoundingRadius(near, far, fov, aspect float32) float32 {
	k := math.Tan(float64(fov)/2) * math.Sqrt(1+float64(aspect*aspect))
	halfDepth := float64(far-near) / 2
	farHalfDiag := float64(far) * k
	return float32(math.Sqrt(halfDepth*halfDepth + farHalfDiag*farHalfDiag))
}

// SnapToTexel rounds v to the nearest multiple of texel.
func SnapToTexel(v, texel float32) float32 {
	return v - float32(math.Remainder(float64(v), float64(texel)))
}

func lightView(center, toLight mgl32.Vec3) mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(toLight.Y())) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	return mgl32.LookAtV(center.Add(toLight), center, up)
}
