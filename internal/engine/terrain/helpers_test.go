package terrain

import "testing"

// mustGrids builds a height grid and a material grid from [z][x] rows.
// A nil materials argument means material 0 everywhere.
func mustGrids(t *testing.T, heights, materials [][]uint8) (*HeightGrid, *MaterialGrid) {
	t.Helper()

	w, d, cells, err := FlattenRows(heights)
	if err != nil {
		t.Fatalf("FlattenRows(heights): %v", err)
	}
	hg, err := NewHeightGrid(w, d, cells)
	if err != nil {
		t.Fatalf("NewHeightGrid: %v", err)
	}

	mcells := make([]uint8, w*d)
	if materials != nil {
		mw, md, flat, err := FlattenRows(materials)
		if err != nil {
			t.Fatalf("FlattenRows(materials): %v", err)
		}
		mg, err := NewMaterialGrid(mw, md, flat)
		if err != nil {
			t.Fatalf("NewMaterialGrid: %v", err)
		}
		return hg, mg
	}
	mg, err := NewMaterialGrid(w, d, mcells)
	if err != nil {
		t.Fatalf("NewMaterialGrid: %v", err)
	}
	return hg, mg
}

// quadNormal returns the sign of each component of the first triangle's
// counter-clockwise normal.
func quadNormal(q FaceQuad) [3]int {
	return triNormal(q[0], q[1], q[2])
}

func triNormal(a, b, c FaceVertex) [3]int {
	e1 := [3]int{int(b.X) - int(a.X), int(b.Y) - int(a.Y), int(b.Z) - int(a.Z)}
	e2 := [3]int{int(c.X) - int(a.X), int(c.Y) - int(a.Y), int(c.Z) - int(a.Z)}
	n := [3]int{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	for i, v := range n {
		switch {
		case v > 0:
			n[i] = 1
		case v < 0:
			n[i] = -1
		}
	}
	return n
}

var outwardNormals = map[FaceID][3]int{
	FaceFlat:   {0, 1, 0},
	FaceRight:  {1, 0, 0},
	FaceBottom: {0, 0, 1},
	FaceLeft:   {-1, 0, 0},
	FaceTop:    {0, 0, -1},
}

// wallDrop returns the vertical extent of a quad.
func wallDrop(q FaceQuad) uint8 {
	lo, hi := q[0].Y, q[0].Y
	for _, v := range q[1:] {
		lo = min(lo, v.Y)
		hi = max(hi, v.Y)
	}
	return hi - lo
}
