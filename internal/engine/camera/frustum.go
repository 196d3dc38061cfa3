package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is n·p + D = 0 with a unit normal pointing into the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from the plane to p.
func (p Plane) Distance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

// Frustum plane indices.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum holds the six clip planes of a view-projection.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum extracts normalized planes from a column-major
// projection * view matrix (Gribb/Hartmann).
func ExtractFrustum(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	rows := [6]mgl32.Vec4{
		PlaneLeft:   r3.Add(r0),
		PlaneRight:  r3.Sub(r0),
		PlaneBottom: r3.Add(r1),
		PlaneTop:    r3.Sub(r1),
		PlaneNear:   r3.Add(r2),
		PlaneFar:    r3.Sub(r2),
	}

	var f Frustum
	for i, r := range rows {
		n := r.Vec3()
		length := n.Len()
		if length == 0 {
			continue
		}
		f.Planes[i] = Plane{Normal: n.Mul(1 / length), D: r.W() / length}
	}
	return f
}

// ContainsPoint reports whether p is inside all six planes.
func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether the box [lo, hi] is at least partly
// inside. For each plane only the corner furthest along the normal is
// tested; the box is culled once that corner is outside.
func (f *Frustum) IntersectsAABB(lo, hi mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		p := lo
		for i := range 3 {
			if pl.Normal[i] >= 0 {
				p[i] = hi[i]
			}
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
