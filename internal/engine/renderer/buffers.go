package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/stepworld/internal/engine/shadow"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
	"github.com/Faultbox/stepworld/internal/engine/visibility"
)

// Buffer errors.
var (
	ErrEmptyBuffer = errors.New("renderer: buffer needs at least one face")
	ErrMapFailed   = errors.New("renderer: glMapBufferRange failed")
	ErrBufferLost  = errors.New("renderer: buffer contents lost while mapped")
)

const (
	faceBytes       = int(unsafe.Sizeof(terrain.FaceQuad{}))
	faceVertexBytes = int32(unsafe.Sizeof(terrain.FaceVertex{}))
	shadowQuadBytes = int(unsafe.Sizeof(shadow.ShadowQuad{}))
	shadowVertBytes = int32(unsafe.Sizeof(shadow.ShadowVertex{}))
)

// StreamBuffer is a vertex buffer rewritten every frame through
// glMapBufferRange. It implements visibility.Buffer.
type StreamBuffer struct {
	vao      uint32
	vbo      uint32
	capacity int
	mapped   bool
}

// NewStreamBuffer allocates room for capacity faces.
func NewStreamBuffer(capacity int) (*StreamBuffer, error) {
	if capacity <= 0 {
		return nil, ErrEmptyBuffer
	}
	b := &StreamBuffer{capacity: capacity}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*faceBytes, nil, gl.STREAM_DRAW)

	// Position (location = 0), three unsigned bytes
	gl.VertexAttribIPointer(0, 3, gl.UNSIGNED_BYTE, faceVertexBytes, nil)
	gl.EnableVertexAttribArray(0)
	// Material and face id (location = 1)
	gl.VertexAttribIPointer(1, 1, gl.UNSIGNED_BYTE, faceVertexBytes, gl.PtrOffset(3))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		b.Destroy()
		return nil, fmt.Errorf("renderer: creating stream buffer of %d faces: GL error 0x%x", capacity, errCode)
	}
	return b, nil
}

// Map implements visibility.Buffer. The previous contents are discarded.
func (b *StreamBuffer) Map() ([]terrain.FaceQuad, error) {
	if b.mapped {
		return nil, visibility.ErrAlreadyMapped
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	ptr := gl.MapBufferRange(gl.ARRAY_BUFFER, 0, b.capacity*faceBytes,
		gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	if ptr == nil {
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		return nil, ErrMapFailed
	}
	b.mapped = true
	return unsafe.Slice((*terrain.FaceQuad)(ptr), b.capacity), nil
}

// Unmap implements visibility.Buffer.
func (b *StreamBuffer) Unmap() error {
	if !b.mapped {
		return visibility.ErrNotMapped
	}
	b.mapped = false
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	ok := gl.UnmapBuffer(gl.ARRAY_BUFFER)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if !ok {
		return ErrBufferLost
	}
	return nil
}

// Draw issues one draw call for the faces in r.
func (b *StreamBuffer) Draw(r visibility.DrawRange) {
	if r.Empty() {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, r.FirstVertex(), r.VertexCount())
	gl.BindVertexArray(0)
}

// Destroy releases the GPU buffers.
func (b *StreamBuffer) Destroy() {
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
}

// StaticMesh is the shadow caster mesh, uploaded once.
type StaticMesh struct {
	vao   uint32
	vbo   uint32
	faces int
}

// NewStaticMesh uploads quads. An empty mesh allocates nothing and draws
// nothing.
func NewStaticMesh(quads []shadow.ShadowQuad) (*StaticMesh, error) {
	m := &StaticMesh{faces: len(quads)}
	if len(quads) == 0 {
		return m, nil
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quads)*shadowQuadBytes, unsafe.Pointer(&quads[0]), gl.STATIC_DRAW)

	gl.VertexAttribIPointer(0, 3, gl.UNSIGNED_BYTE, shadowVertBytes, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		m.Destroy()
		return nil, fmt.Errorf("renderer: uploading %d shadow faces: GL error 0x%x", len(quads), errCode)
	}
	return m, nil
}

// Faces returns the number of uploaded faces.
func (m *StaticMesh) Faces() int { return m.faces }

// Draw issues one draw call for the faces in r.
func (m *StaticMesh) Draw(r visibility.DrawRange) {
	if r.Empty() || m.vao == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, r.FirstVertex(), r.VertexCount())
	gl.BindVertexArray(0)
}

// Destroy releases the GPU buffers.
func (m *StaticMesh) Destroy() {
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}
