package terrain

import "testing"

func TestFaceID(t *testing.T) {
	tests := []struct {
		kind FaceKind
		side uint8
		want FaceID
	}{
		{Flat, 0, FaceFlat},
		{VertNS, 0, FaceRight},
		{VertEW, 0, FaceBottom},
		{VertNS, 1, FaceLeft},
		{VertEW, 1, FaceTop},
	}

	for _, tt := range tests {
		if got := faceID(tt.kind, tt.side); got != tt.want {
			t.Errorf("faceID(%v, %d) = %d, want %d", tt.kind, tt.side, got, tt.want)
		}
	}
}

func TestFaceInfoPacking(t *testing.T) {
	q := Face{Kind: VertEW, Origin: [2]uint8{2, 3}, Size: [2]uint8{1, 1}}.Quad(4, 1, 31)
	for i, v := range q {
		if v.Material() != 31 {
			t.Errorf("vertex %d material = %d, want 31", i, v.Material())
		}
		if v.FaceID() != FaceTop {
			t.Errorf("vertex %d face id = %d, want top", i, v.FaceID())
		}
	}
	if q[0].Info != 31<<3|4 {
		t.Errorf("Info = %#x, want %#x", q[0].Info, 31<<3|4)
	}
}

func TestQuadWindingIsOutward(t *testing.T) {
	faces := []struct {
		face Face
		side uint8
	}{
		{Face{Kind: Flat, Origin: [2]uint8{1, 2}, Size: [2]uint8{3, 4}}, 0},
		{Face{Kind: VertNS, Origin: [2]uint8{5, 1}, Size: [2]uint8{2, 3}}, 0},
		{Face{Kind: VertNS, Origin: [2]uint8{5, 1}, Size: [2]uint8{2, 3}}, 1},
		{Face{Kind: VertEW, Origin: [2]uint8{1, 5}, Size: [2]uint8{2, 3}}, 0},
		{Face{Kind: VertEW, Origin: [2]uint8{1, 5}, Size: [2]uint8{2, 3}}, 1},
	}

	for _, f := range faces {
		q := f.face.Quad(6, f.side, 0)
		want := outwardNormals[q[0].FaceID()]
		if got := triNormal(q[0], q[1], q[2]); got != want {
			t.Errorf("%v side %d: first triangle normal %v, want %v", f.face.Kind, f.side, got, want)
		}
		if got := triNormal(q[3], q[4], q[5]); got != want {
			t.Errorf("%v side %d: second triangle normal %v, want %v", f.face.Kind, f.side, got, want)
		}
	}
}

func TestQuadExtents(t *testing.T) {
	q := Face{Kind: VertNS, Origin: [2]uint8{4, 2}, Size: [2]uint8{3, 2}}.Quad(5, 0, 0)

	for _, v := range q {
		if v.X != 4 {
			t.Errorf("NS wall vertex X = %d, want 4", v.X)
		}
		if v.Z < 2 || v.Z > 5 {
			t.Errorf("NS wall vertex Z = %d, want within [2,5]", v.Z)
		}
		if v.Y != 3 && v.Y != 5 {
			t.Errorf("NS wall vertex Y = %d, want 3 or 5", v.Y)
		}
	}
	if d := wallDrop(q); d != 2 {
		t.Errorf("drop = %d, want 2", d)
	}
}

func TestGenerateFacesForSectorWallsPlacement(t *testing.T) {
	heights, _ := mustGrids(t, [][]uint8{
		{0, 0, 0, 0},
		{0, 4, 4, 0},
		{0, 0, 0, 0},
	}, nil)
	s := Sector{Origin: [2]uint8{1, 1}, Size: [2]uint8{2, 1}, MaxVisible: 4}

	mesh, biggest := GenerateFacesForSector(s, heights, nil)
	if biggest != 4 {
		t.Errorf("biggest drop = %d, want 4", biggest)
	}
	if len(mesh) != 5 {
		t.Fatalf("got %d faces, want 5", len(mesh))
	}

	for _, q := range mesh[1:] {
		switch q[0].FaceID() {
		case FaceRight:
			// Far edge walls sit on origin + size
			if q[0].X != 3 {
				t.Errorf("right wall at x=%d, want 3", q[0].X)
			}
		case FaceLeft:
			if q[0].X != 1 {
				t.Errorf("left wall at x=%d, want 1", q[0].X)
			}
		case FaceBottom:
			if q[0].Z != 2 {
				t.Errorf("bottom wall at z=%d, want 2", q[0].Z)
			}
		case FaceTop:
			if q[0].Z != 1 {
				t.Errorf("top wall at z=%d, want 1", q[0].Z)
			}
		}
	}
}

func TestGenerateFacesSkipsRisingNeighbours(t *testing.T) {
	heights, _ := mustGrids(t, [][]uint8{
		{2, 5, 2, 2, 0},
	}, nil)
	// A 1-deep strip; the cells at x=2..3 drop 2 to the right
	s := Sector{Origin: [2]uint8{2, 0}, Size: [2]uint8{2, 1}, MaxVisible: 2}

	mesh, biggest := GenerateFacesForSector(s, heights, nil)
	if len(mesh) != 2 {
		t.Fatalf("got %d faces, want flat plus one right wall", len(mesh))
	}
	if mesh[1][0].FaceID() != FaceRight || biggest != 2 {
		t.Errorf("wall %d drop %d, want right wall drop 2", mesh[1][0].FaceID(), biggest)
	}
}
