// Package terrain compiles height and material grids into rectangular
// sectors and a non-indexed face mesh for stepped heightfield worlds.
package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxMaterials is the number of material ids that fit the 5 material
	// bits of FaceVertex.Info.
	MaxMaterials = 32

	// MaxGridSize is the largest width or depth. Far-side vertices sit at
	// coordinate width/depth, which must still fit a byte.
	MaxGridSize = 255

	// VerticesPerFace is two triangles, unindexed.
	VerticesPerFace = 6
)

// FaceKind is the orientation class of a Face.
type FaceKind uint8

const (
	Flat   FaceKind = iota // Top of a sector
	VertNS                 // Wall on a fixed X, spanning Z
	VertEW                 // Wall on a fixed Z, spanning X
)

// String implements fmt.Stringer.
func (k FaceKind) String() string {
	switch k {
	case Flat:
		return "flat"
	case VertNS:
		return "vert-ns"
	case VertEW:
		return "vert-ew"
	}
	return "unknown"
}

// FaceID is the orientation stored in the low 3 bits of FaceVertex.Info.
type FaceID uint8

const (
	FaceFlat   FaceID = iota // +Y
	FaceRight                // +X
	FaceBottom               // +Z
	FaceLeft                 // -X
	FaceTop                  // -Z
)

// Face is a planar quad produced while meshing a sector. Origin is the
// (x, z) start of the face; Size is (size x, size z) for flat faces and
// (span, drop) for walls.
type Face struct {
	Kind   FaceKind
	Origin [2]uint8
	Size   [2]uint8
}

// FaceVertex is one vertex of the world mesh as uploaded to the GPU.
type FaceVertex struct {
	X, Y, Z uint8
	Info    uint8 // material<<3 | face id
}

// Material returns the material id packed into the vertex.
func (v FaceVertex) Material() uint8 { return v.Info >> 3 }

// FaceID returns the orientation packed into the vertex.
func (v FaceVertex) FaceID() FaceID { return FaceID(v.Info & 7) }

// FaceQuad is the six vertices of one face.
type FaceQuad [VerticesPerFace]FaceVertex

// Range is a half-open span of faces in the world mesh.
type Range struct {
	Start  int
	Length int
}

// End returns the index one past the last face.
func (r Range) End() int { return r.Start + r.Length }

// Sector is a maximal rectangle of uniform height and material.
type Sector struct {
	Origin     [2]uint8 // (x, z)
	Size       [2]uint8 // (width, depth) in cells
	MinVisible uint8    // Lowest point of any wall this sector emits
	MaxVisible uint8    // Height of the sector top
	Material   uint8
	Faces      Range // Slice of the world mesh owned by this sector
}

// Contains reports whether cell (x, z) lies inside the sector.
func (s Sector) Contains(x, z int) bool {
	ox, oz := int(s.Origin[0]), int(s.Origin[1])
	return x >= ox && x < ox+int(s.Size[0]) && z >= oz && z < oz+int(s.Size[1])
}

// Area returns the number of cells covered.
func (s Sector) Area() int { return int(s.Size[0]) * int(s.Size[1]) }

// Bounds returns the world-space box enclosing every face of the sector.
func (s Sector) Bounds() Bounds {
	ox, oz := float32(s.Origin[0]), float32(s.Origin[1])
	return Bounds{
		Min: mgl32.Vec3{ox, float32(s.MinVisible), oz},
		Max: mgl32.Vec3{ox + float32(s.Size[0]), float32(s.MaxVisible), oz + float32(s.Size[1])},
	}
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Stats summarises a compiled world.
type Stats struct {
	Width, Depth int
	Sectors      int
	Faces        int
	FlatFaces    int
	WallFaces    int
	EdgeFaces    int
	MaxHeight    uint8
}
