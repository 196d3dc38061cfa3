package terrain

// faceID maps a face kind and side to the packed orientation. Side 0 is
// the far (right or bottom) edge of a sector, side 1 the near one.
func faceID(kind FaceKind, side uint8) FaceID {
	id := side<<2 | uint8(kind)
	if id == 5 || id == 6 {
		id -= 2
	}
	return FaceID(id)
}

// faceInfo packs a material and orientation into one byte.
func faceInfo(material uint8, id FaceID) uint8 {
	return material<<3 | uint8(id)
}

// Quad triangulates the face. top is the height of its upper edge; walls
// hang Size[1] below it. Every order winds counter-clockwise seen from
// outside the column.
func (f Face) Quad(top, side, material uint8) FaceQuad {
	info := faceInfo(material, faceID(f.Kind, side))
	switch f.Kind {
	case VertNS:
		return vertNSQuad(f, top, side, info)
	case VertEW:
		return vertEWQuad(f, top, side, info)
	default:
		return flatQuad(f, top, info)
	}
}

func flatQuad(f Face, y, info uint8) FaceQuad {
	nx, nz := f.Origin[0], f.Origin[1]
	fx, fz := nx+f.Size[0], nz+f.Size[1]
	return FaceQuad{
		{nx, y, fz, info},
		{fx, y, nz, info},
		{nx, y, nz, info},
		{nx, y, fz, info},
		{fx, y, fz, info},
		{fx, y, nz, info},
	}
}

func vertNSQuad(f Face, top, side, info uint8) FaceQuad {
	x, nz := f.Origin[0], f.Origin[1]
	fz, bot := nz+f.Size[0], top-f.Size[1]
	if side == 1 { // Faces -X
		return FaceQuad{
			{x, bot, nz, info},
			{x, top, fz, info},
			{x, top, nz, info},
			{x, bot, nz, info},
			{x, bot, fz, info},
			{x, top, fz, info},
		}
	}
	return FaceQuad{ // Faces +X
		{x, top, nz, info},
		{x, top, fz, info},
		{x, bot, nz, info},
		{x, top, fz, info},
		{x, bot, fz, info},
		{x, bot, nz, info},
	}
}

func vertEWQuad(f Face, top, side, info uint8) FaceQuad {
	nx, z := f.Origin[0], f.Origin[1]
	fx, bot := nx+f.Size[0], top-f.Size[1]
	if side == 1 { // Faces -Z
		return FaceQuad{
			{nx, top, z, info},
			{fx, top, z, info},
			{nx, bot, z, info},
			{fx, top, z, info},
			{fx, bot, z, info},
			{nx, bot, z, info},
		}
	}
	return FaceQuad{ // Faces +Z
		{nx, bot, z, info},
		{fx, top, z, info},
		{nx, top, z, info},
		{nx, bot, z, info},
		{fx, bot, z, info},
		{fx, top, z, info},
	}
}

// GenerateFacesForSector appends the faces of s to mesh: one flat top,
// then a wall for every run of equal positive height drop along each
// grid-internal edge. It returns the extended mesh and the largest drop.
func GenerateFacesForSector(s Sector, heights *HeightGrid, mesh []FaceQuad) ([]FaceQuad, uint8) {
	top := s.MaxVisible
	mesh = append(mesh, Face{Kind: Flat, Origin: s.Origin, Size: s.Size}.Quad(top, 0, s.Material))

	dims := [2]int{heights.Width(), heights.Depth()}
	var biggest uint8

	// axis is the coordinate held fixed along the wall
	for axis := 0; axis < 2; axis++ {
		varying := 1 - axis
		for side := uint8(0); side < 2; side++ {
			origin := s.Origin
			var neighbour int
			if side == 1 {
				if origin[axis] == 0 {
					continue
				}
				neighbour = int(origin[axis]) - 1
			} else {
				edge := int(origin[axis]) + int(s.Size[axis])
				if edge == dims[axis] {
					continue
				}
				neighbour = edge
				origin[axis] = uint8(edge)
			}

			drop := func(pos int) int {
				var cell [2]int
				cell[axis] = neighbour
				cell[varying] = pos
				return int(top) - int(heights.At(cell[0], cell[1]))
			}

			start := int(s.Origin[varying])
			end := start + int(s.Size[varying])
			for pos := start; pos < end; {
				d := drop(pos)
				if d <= 0 {
					pos++
					continue
				}
				run := pos + 1
				for run < end && drop(run) == d {
					run++
				}

				face := Face{Kind: VertNS + FaceKind(axis), Origin: origin}
				face.Origin[varying] = uint8(pos)
				face.Size = [2]uint8{uint8(run - pos), uint8(d)}
				mesh = append(mesh, face.Quad(top, side, s.Material))

				biggest = max(biggest, uint8(d))
				pos = run
			}
		}
	}

	return mesh, biggest
}
