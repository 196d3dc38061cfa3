package terrain

// GenerateEdgeFaces builds the outward walls along the four borders of
// the grid, from each border cell down to height 0. The world mesh never
// contains them since nothing outside the grid can see them, but the
// shadow pass needs them so light does not leak in at the map edges.
// Runs of equal height share one face; height 0 emits nothing.
func GenerateEdgeFaces(heights *HeightGrid) []FaceQuad {
	dims := [2]int{heights.Width(), heights.Depth()}
	var edges []FaceQuad

	for axis := 0; axis < 2; axis++ {
		varying := 1 - axis
		for side := uint8(0); side < 2; side++ {
			border, wallAt := 0, 0
			if side == 0 {
				border = dims[axis] - 1
				wallAt = dims[axis]
			}

			sample := func(pos int) uint8 {
				var cell [2]int
				cell[axis] = border
				cell[varying] = pos
				return heights.At(cell[0], cell[1])
			}

			for pos := 0; pos < dims[varying]; {
				h := sample(pos)
				run := pos + 1
				for run < dims[varying] && sample(run) == h {
					run++
				}

				if h != 0 {
					face := Face{Kind: VertNS + FaceKind(axis)}
					face.Origin[axis] = uint8(wallAt)
					face.Origin[varying] = uint8(pos)
					face.Size = [2]uint8{uint8(run - pos), h}
					edges = append(edges, face.Quad(h, side, 0))
				}
				pos = run
			}
		}
	}

	return edges
}
