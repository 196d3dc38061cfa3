package terrain

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid errors.
var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrGridSizeMismatch  = errors.New("height and material grid sizes differ")
	ErrMaterialTooLarge  = errors.New("material id exceeds maximum")
)

// MaterialError reports a material id that does not fit the face tag.
type MaterialError struct {
	X, Z int
	ID   uint8
}

func (e *MaterialError) Error() string {
	return fmt.Sprintf("material id %d at (%d, %d) exceeds the maximum of %d",
		e.ID, e.X, e.Z, MaxMaterials-1)
}

// Unwrap lets errors.Is match ErrMaterialTooLarge.
func (e *MaterialError) Unwrap() error { return ErrMaterialTooLarge }

// Grid is a row-major width × depth grid of bytes addressed (x, z).
type Grid struct {
	width int
	depth int
	cells []uint8
}

// HeightGrid holds per-cell heights.
type HeightGrid struct{ Grid }

// MaterialGrid holds per-cell material ids.
type MaterialGrid struct{ Grid }

func newGrid(width, depth int, cells []uint8) (Grid, error) {
	if width < 1 || depth < 1 || width > MaxGridSize || depth > MaxGridSize {
		return Grid{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, depth)
	}
	if len(cells) != width*depth {
		return Grid{}, fmt.Errorf("%w: %dx%d needs %d cells, got %d",
			ErrInvalidDimensions, width, depth, width*depth, len(cells))
	}
	return Grid{width: width, depth: depth, cells: cells}, nil
}

// NewHeightGrid wraps cells (not copied) as a height grid.
func NewHeightGrid(width, depth int, cells []uint8) (*HeightGrid, error) {
	g, err := newGrid(width, depth, cells)
	if err != nil {
		return nil, fmt.Errorf("height grid: %w", err)
	}
	return &HeightGrid{g}, nil
}

// NewMaterialGrid wraps cells (not copied) as a material grid. Ids are
// checked by ValidateMaterials and by Decompose, not here.
func NewMaterialGrid(width, depth int, cells []uint8) (*MaterialGrid, error) {
	g, err := newGrid(width, depth, cells)
	if err != nil {
		return nil, fmt.Errorf("material grid: %w", err)
	}
	return &MaterialGrid{g}, nil
}

// FlattenRows converts rows indexed [z][x] to a row-major cell slice.
// All rows must have the same length.
func FlattenRows(rows [][]uint8) (width, depth int, cells []uint8, err error) {
	depth = len(rows)
	if depth == 0 {
		return 0, 0, nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	width = len(rows[0])
	cells = make([]uint8, 0, width*depth)
	for z, row := range rows {
		if len(row) != width {
			return 0, 0, nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrInvalidDimensions, z, len(row), width)
		}
		cells = append(cells, row...)
	}
	return width, depth, cells, nil
}

// Width returns the number of cells along X.
func (g *Grid) Width() int { return g.width }

// Depth returns the number of cells along Z.
func (g *Grid) Depth() int { return g.depth }

// Cells returns the backing row-major slice. Callers must not modify it.
func (g *Grid) Cells() []uint8 { return g.cells }

// InBounds reports whether (x, z) is a cell of the grid.
func (g *Grid) InBounds(x, z int) bool {
	return x >= 0 && x < g.width && z >= 0 && z < g.depth
}

// At returns the value at (x, z), or 0 outside the grid.
func (g *Grid) At(x, z int) uint8 {
	if !g.InBounds(x, z) {
		return 0
	}
	return g.cells[z*g.width+x]
}

// Max returns the largest value in the grid.
func (g *Grid) Max() uint8 {
	var m uint8
	for _, c := range g.cells {
		m = max(m, c)
	}
	return m
}

// SameSize reports whether two grids have equal dimensions.
func (g *Grid) SameSize(o *Grid) bool {
	return g.width == o.width && g.depth == o.depth
}

// ValidateMaterials returns a *MaterialError for the first id that does
// not fit the face tag.
func (g *MaterialGrid) ValidateMaterials() error {
	for i, id := range g.cells {
		if id >= MaxMaterials {
			return &MaterialError{X: i % g.width, Z: i / g.width, ID: id}
		}
	}
	return nil
}

// MaxJumpHeight returns the apex of a jump with the given launch speed.
func MaxJumpHeight(velocity, gravity float32) float32 {
	return velocity * velocity / (2 * gravity)
}

// FarClipDistance is the length of the world's diagonal, measured up to
// the highest point an eye can reach above the tallest cell.
func FarClipDistance(heights *HeightGrid, aboveMax float32) float32 {
	diag := mgl32.Vec3{
		float32(heights.Width()),
		float32(heights.Depth()),
		float32(heights.Max()) + aboveMax,
	}
	return diag.Len()
}
