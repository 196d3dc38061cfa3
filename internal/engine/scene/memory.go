package scene

import (
	"github.com/Faultbox/stepworld/internal/engine/shadow"
	"github.com/Faultbox/stepworld/internal/engine/visibility"
)

// MemoryDevice keeps everything in system memory. The headless tools
// drive a World through it.
type MemoryDevice struct {
	Stream     *visibility.MemoryBuffer
	ShadowMesh []shadow.ShadowQuad
}

// NewStreamBuffer implements Device.
func (d *MemoryDevice) NewStreamBuffer(faces int) (visibility.Buffer, error) {
	d.Stream = visibility.NewMemoryBuffer(faces)
	return d.Stream, nil
}

// UploadShadowMesh implements Device.
func (d *MemoryDevice) UploadShadowMesh(quads []shadow.ShadowQuad) error {
	d.ShadowMesh = append(d.ShadowMesh[:0], quads...)
	return nil
}
