package lighting

import (
	"errors"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrDegenerateLight is returned for a zero-length light direction.
var ErrDegenerateLight = errors.New("light direction has zero length")

// DynamicLight swings between two directions on a sine cycle. Both
// directions point towards the light.
type DynamicLight struct {
	from  mgl32.Vec3
	to    mgl32.Vec3
	cycle time.Duration
}

// NewDynamicLight normalizes both directions. A zero cycle keeps the
// light fixed at from.
func NewDynamicLight(from, to mgl32.Vec3, cycle time.Duration) (*DynamicLight, error) {
	if from.Len() == 0 || to.Len() == 0 {
		return nil, ErrDegenerateLight
	}
	return &DynamicLight{
		from:  from.Normalize(),
		to:    to.Normalize(),
		cycle: cycle,
	}, nil
}

// Extremes returns the two directions the light moves between.
func (l *DynamicLight) Extremes() (from, to mgl32.Vec3) {
	return l.from, l.to
}

// Weight returns the blend factor towards to at time t, in [0, 1].
func (l *DynamicLight) Weight(t time.Duration) float32 {
	if l.cycle <= 0 {
		return 0
	}
	phase := t.Seconds() / l.cycle.Seconds() * 2 * math.Pi
	return float32(math.Sin(phase)*0.5 + 0.5)
}

// Direction returns the unit direction towards the light at time t.
func (l *DynamicLight) Direction(t time.Duration) mgl32.Vec3 {
	w := l.Weight(t)
	dir := l.from.Mul(1 - w).Add(l.to.Mul(w))
	if dir.Len() == 0 {
		// Opposite extremes cancel halfway; keep the nearer end
		if w < 0.5 {
			return l.from
		}
		return l.to
	}
	return dir.Normalize()
}
