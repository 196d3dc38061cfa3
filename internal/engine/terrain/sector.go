package terrain

import (
	"errors"
	"fmt"
)

// ErrCorruptWorld reports a world whose sectors and mesh disagree.
var ErrCorruptWorld = errors.New("corrupt world")

// Decompose partitions the grids into sectors and builds the world mesh.
//
// Cells are scanned row-major. Each unclaimed cell starts a sector that
// grows right over unclaimed matching cells, then down while whole rows
// match. The partition is greedy, not minimal. Sector face ranges are
// contiguous and in sector order.
func Decompose(heights *HeightGrid, materials *MaterialGrid) ([]Sector, []FaceQuad, error) {
	if !heights.SameSize(&materials.Grid) {
		return nil, nil, fmt.Errorf("%w: heights %dx%d, materials %dx%d", ErrGridSizeMismatch,
			heights.Width(), heights.Depth(), materials.Width(), materials.Depth())
	}

	width, depth := heights.Width(), heights.Depth()
	claimed := newClaimedSet(width, depth)

	guess := max(width*depth/8, 1)
	sectors := make([]Sector, 0, guess)
	mesh := make([]FaceQuad, 0, guess*3)

	for z := range depth {
		for x := 0; x < width; x++ {
			if claimed.has(x, z) {
				continue
			}

			material := materials.At(x, z)
			if material >= MaxMaterials {
				return nil, nil, &MaterialError{X: x, Z: z, ID: material}
			}

			s := Sector{
				Origin:     [2]uint8{uint8(x), uint8(z)},
				MaxVisible: heights.At(x, z),
				Material:   material,
			}
			s.Size = growSector(x, z, s.MaxVisible, material, heights, materials, claimed)
			claimed.claimRect(x, z, int(s.Size[0]), int(s.Size[1]))

			var drop uint8
			s.Faces.Start = len(mesh)
			mesh, drop = GenerateFacesForSector(s, heights, mesh)
			s.Faces.Length = len(mesh) - s.Faces.Start
			s.MinVisible = s.MaxVisible - drop

			sectors = append(sectors, s)

			// The rest of this row span is claimed now
			x += int(s.Size[0]) - 1
		}
	}

	return sectors, mesh, nil
}

// growSector returns the size of the rectangle starting at (x, z): as
// wide as the run of unclaimed matching cells, and as deep as the rows
// that match across that whole width.
func growSector(x, z int, height, material uint8, heights *HeightGrid, materials *MaterialGrid, claimed *claimedSet) [2]uint8 {
	matches := func(cx, cz int) bool {
		return heights.At(cx, cz) == height && materials.At(cx, cz) == material
	}

	right := x
	for right < heights.Width() && !claimed.has(right, z) && matches(right, z) {
		right++
	}

	down := z + 1
rows:
	for down < heights.Depth() {
		for cx := x; cx < right; cx++ {
			if !matches(cx, down) {
				break rows
			}
		}
		down++
	}

	return [2]uint8{uint8(right - x), uint8(down - z)}
}

// World is a compiled level: the grids it came from, its sectors, the
// world mesh they index into and the map-edge walls.
type World struct {
	Heights   *HeightGrid
	Materials *MaterialGrid
	Sectors   []Sector
	Mesh      []FaceQuad
	Edges     []FaceQuad
}

// Compile decomposes the grids and builds the edge walls.
func Compile(heights *HeightGrid, materials *MaterialGrid) (*World, error) {
	sectors, mesh, err := Decompose(heights, materials)
	if err != nil {
		return nil, fmt.Errorf("decomposing sectors: %w", err)
	}
	return &World{
		Heights:   heights,
		Materials: materials,
		Sectors:   sectors,
		Mesh:      mesh,
		Edges:     GenerateEdgeFaces(heights),
	}, nil
}

// SectorMesh returns the faces owned by sector i.
func (w *World) SectorMesh(i int) []FaceQuad {
	r := w.Sectors[i].Faces
	return w.Mesh[r.Start:r.End()]
}

// Check verifies that the sectors cover every cell exactly once and that
// their face ranges partition the mesh in order. Worlds loaded from a
// cache are checked before use.
func (w *World) Check() error {
	width, depth := w.Heights.Width(), w.Heights.Depth()
	claimed := newClaimedSet(width, depth)
	next := 0

	for i, s := range w.Sectors {
		ox, oz := int(s.Origin[0]), int(s.Origin[1])
		sw, sd := int(s.Size[0]), int(s.Size[1])
		if sw == 0 || sd == 0 || ox+sw > width || oz+sd > depth {
			return fmt.Errorf("%w: sector %d out of bounds", ErrCorruptWorld, i)
		}
		for cz := oz; cz < oz+sd; cz++ {
			for cx := ox; cx < ox+sw; cx++ {
				if claimed.has(cx, cz) {
					return fmt.Errorf("%w: cell (%d, %d) claimed twice", ErrCorruptWorld, cx, cz)
				}
			}
		}
		claimed.claimRect(ox, oz, sw, sd)

		if s.Faces.Start != next || s.Faces.Length < 1 {
			return fmt.Errorf("%w: sector %d face range %+v, want start %d",
				ErrCorruptWorld, i, s.Faces, next)
		}
		next = s.Faces.End()
		if s.MinVisible > s.MaxVisible {
			return fmt.Errorf("%w: sector %d visible heights inverted", ErrCorruptWorld, i)
		}
	}

	if next != len(w.Mesh) {
		return fmt.Errorf("%w: sectors cover %d faces, mesh has %d", ErrCorruptWorld, next, len(w.Mesh))
	}
	for cz := range depth {
		for cx := range width {
			if !claimed.has(cx, cz) {
				return fmt.Errorf("%w: cell (%d, %d) not covered", ErrCorruptWorld, cx, cz)
			}
		}
	}
	return nil
}

// Stats counts the faces of the compiled world.
func (w *World) Stats() Stats {
	st := Stats{
		Width:     w.Heights.Width(),
		Depth:     w.Heights.Depth(),
		Sectors:   len(w.Sectors),
		Faces:     len(w.Mesh),
		EdgeFaces: len(w.Edges),
		MaxHeight: w.Heights.Max(),
	}
	for _, q := range w.Mesh {
		if q[0].FaceID() == FaceFlat {
			st.FlatFaces++
		} else {
			st.WallFaces++
		}
	}
	return st
}
