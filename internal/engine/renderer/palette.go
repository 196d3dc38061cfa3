package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// MaterialCount is the size of the material palette uniform.
const MaterialCount = terrain.MaxMaterials

// MaterialPalette returns the base colour of every material id. Material
// 0 is neutral stone; the rest step around the hue circle by the golden
// angle so neighbouring ids stay distinct.
func MaterialPalette() [MaterialCount]mgl32.Vec3 {
	var p [MaterialCount]mgl32.Vec3
	p[0] = mgl32.Vec3{0.62, 0.60, 0.56}
	for i := 1; i < MaterialCount; i++ {
		hue := math.Mod(float64(i)*137.508, 360)
		value := 0.85 - 0.1*float64(i%3)
		p[i] = hsv(hue, 0.55, value)
	}
	return p
}

func hsv(h, s, v float64) mgl32.Vec3 {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return mgl32.Vec3{float32(r + m), float32(g + m), float32(b + m)}
}
