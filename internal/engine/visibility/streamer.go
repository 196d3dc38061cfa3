// Package visibility streams the frustum-visible part of the world mesh
// into a mapped vertex buffer once per frame.
package visibility

import (
	"fmt"

	"github.com/Faultbox/stepworld/internal/engine/camera"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// DrawRange is a span of faces in a vertex buffer.
type DrawRange struct {
	First int
	Count int
}

// Empty reports whether there is nothing to draw.
func (r DrawRange) Empty() bool { return r.Count == 0 }

// FirstVertex returns the first vertex index for glDrawArrays.
func (r DrawRange) FirstVertex() int32 { return int32(r.First * terrain.VerticesPerFace) }

// VertexCount returns the vertex count for glDrawArrays.
func (r DrawRange) VertexCount() int32 { return int32(r.Count * terrain.VerticesPerFace) }

// Streamer copies the visible sectors' faces into a Buffer. Consecutive
// visible sectors own a contiguous slice of the mesh, so each run of them
// costs one copy.
type Streamer struct {
	sectors []terrain.Sector
	mesh    []terrain.FaceQuad
	buf     Buffer

	runs    int
	visible int
}

// NewStreamer creates a streamer over a compiled world. buf must hold at
// least len(mesh) faces.
func NewStreamer(sectors []terrain.Sector, mesh []terrain.FaceQuad, buf Buffer) *Streamer {
	return &Streamer{sectors: sectors, mesh: mesh, buf: buf}
}

// Stream writes the sectors inside the camera frustum and returns the
// range to draw. A camera looking down -Z gets its runs packed from the
// end of the buffer backwards, so that either way the faces nearest the
// camera along Z come first.
func (s *Streamer) Stream(cam *camera.Camera) (r DrawRange, err error) {
	dst, err := s.buf.Map()
	if err != nil {
		return DrawRange{}, fmt.Errorf("mapping world buffer: %w", err)
	}
	defer func() {
		if uerr := s.buf.Unmap(); uerr != nil && err == nil {
			r, err = DrawRange{}, fmt.Errorf("unmapping world buffer: %w", uerr)
		}
	}()

	if len(dst) < len(s.mesh) {
		return DrawRange{}, fmt.Errorf("%w: %d < %d", ErrBufferTooSmall, len(dst), len(s.mesh))
	}

	backwards := cam.Dir.Z() < 0
	cursor := 0
	if backwards {
		cursor = len(dst)
	}
	total := 0
	s.runs, s.visible = 0, 0

	for i := 0; i < len(s.sectors); {
		start := i
		for i < len(s.sectors) && sectorVisible(&cam.Frustum, s.sectors[i]) {
			i++
		}
		if i == start {
			i++
			continue
		}

		src := s.mesh[s.sectors[start].Faces.Start:s.sectors[i-1].Faces.End()]
		if backwards {
			cursor -= len(src)
			copy(dst[cursor:], src)
		} else {
			copy(dst[cursor:], src)
			cursor += len(src)
		}

		total += len(src)
		s.runs++
		s.visible += i - start
	}

	if backwards {
		return DrawRange{First: cursor, Count: total}, nil
	}
	return DrawRange{First: 0, Count: total}, nil
}

// Runs returns the number of bulk copies made by the last Stream.
func (s *Streamer) Runs() int { return s.runs }

// VisibleSectors returns how many sectors the last Stream kept.
func (s *Streamer) VisibleSectors() int { return s.visible }

func sectorVisible(f *camera.Frustum, s terrain.Sector) bool {
	b := s.Bounds()
	return f.IntersectsAABB(b.Min, b.Max)
}
