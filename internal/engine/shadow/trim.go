package shadow

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// ShadowVertex is a world mesh position without the face tag.
type ShadowVertex [3]uint8

// ShadowQuad is one face of the shadow caster mesh.
type ShadowQuad [terrain.VerticesPerFace]ShadowVertex

// FaceNormal returns the outward normal of an axis-aligned quad as a
// vector of signs. It works on the signs of the first triangle's edges,
// which is exact here because at least one of the two edges leaving the
// first vertex is parallel to an axis.
func FaceNormal(q terrain.FaceQuad) [3]int8 {
	a, b, c := q[0], q[1], q[2]
	e1 := [3]int8{sign(a.X, b.X), sign(a.Y, b.Y), sign(a.Z, b.Z)}
	e2 := [3]int8{sign(a.X, c.X), sign(a.Y, c.Y), sign(a.Z, c.Z)}
	return [3]int8{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
}

// sign returns the sign of to - from.
func sign(from, to uint8) int8 {
	switch {
	case to > from:
		return 1
	case to < from:
		return -1
	}
	return 0
}

func facesLight(n [3]int8, toLight mgl32.Vec3) bool {
	return float32(n[0])*toLight[0]+float32(n[1])*toLight[1]+float32(n[2])*toLight[2] > 0
}

// TrimForShadow keeps the faces of mesh and edges that face either
// extreme of the light's swing and drops their face tags. The result is
// valid for every light direction between from and to.
func TrimForShadow(mesh, edges []terrain.FaceQuad, from, to mgl32.Vec3) []ShadowQuad {
	trimmed := make([]ShadowQuad, 0, (len(mesh)+len(edges))/2)
	for _, faces := range [2][]terrain.FaceQuad{mesh, edges} {
		for _, q := range faces {
			n := FaceNormal(q)
			if !facesLight(n, from) && !facesLight(n, to) {
				continue
			}
			var sq ShadowQuad
			for i, v := range q {
				sq[i] = ShadowVertex{v.X, v.Y, v.Z}
			}
			trimmed = append(trimmed, sq)
		}
	}
	return trimmed
}
