package visibility

import (
	"errors"

	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// Buffer errors.
var (
	ErrAlreadyMapped  = errors.New("buffer already mapped")
	ErrNotMapped      = errors.New("buffer not mapped")
	ErrBufferTooSmall = errors.New("buffer smaller than the world mesh")
)

// Buffer is a fixed-capacity destination for streamed faces. Map grants
// exclusive write access to the whole buffer, discarding its previous
// contents, until Unmap.
type Buffer interface {
	Map() ([]terrain.FaceQuad, error)
	Unmap() error
}

// MemoryBuffer is a Buffer in system memory, used by the headless tools.
type MemoryBuffer struct {
	data   []terrain.FaceQuad
	mapped bool
}

// NewMemoryBuffer allocates room for capacity faces.
func NewMemoryBuffer(capacity int) *MemoryBuffer {
	return &MemoryBuffer{data: make([]terrain.FaceQuad, capacity)}
}

// Map implements Buffer.
func (b *MemoryBuffer) Map() ([]terrain.FaceQuad, error) {
	if b.mapped {
		return nil, ErrAlreadyMapped
	}
	b.mapped = true
	return b.data, nil
}

// Unmap implements Buffer.
func (b *MemoryBuffer) Unmap() error {
	if !b.mapped {
		return ErrNotMapped
	}
	b.mapped = false
	return nil
}

// Mapped reports whether the buffer is currently mapped.
func (b *MemoryBuffer) Mapped() bool { return b.mapped }

// Contents returns the faces covered by r.
func (b *MemoryBuffer) Contents(r DrawRange) []terrain.FaceQuad {
	return b.data[r.First : r.First+r.Count]
}
