package visibility

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepworld/internal/engine/camera"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// checkerWorld compiles a bumpy grid that breaks into many small sectors.
func checkerWorld(t *testing.T, size int) *terrain.World {
	t.Helper()
	cells := make([]uint8, size*size)
	for z := range size {
		for x := range size {
			cells[z*size+x] = uint8((x+z)%2 + (x*z)%3)
		}
	}
	heights, err := terrain.NewHeightGrid(size, size, cells)
	if err != nil {
		t.Fatalf("NewHeightGrid: %v", err)
	}
	materials, err := terrain.NewMaterialGrid(size, size, make([]uint8, size*size))
	if err != nil {
		t.Fatalf("NewMaterialGrid: %v", err)
	}
	world, err := terrain.Compile(heights, materials)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return world
}

func newCamera(pos mgl32.Vec3, yaw, pitch, fov float32) *camera.Camera {
	c := camera.New(pos, fov, 1, 0.25, 200)
	c.Rotate(yaw, pitch)
	c.Update()
	return c
}

// visibleRuns groups the faces of consecutive visible sectors.
func visibleRuns(world *terrain.World, cam *camera.Camera) [][]terrain.FaceQuad {
	var runs [][]terrain.FaceQuad
	var cur []terrain.FaceQuad
	inRun := false
	for i, s := range world.Sectors {
		b := s.Bounds()
		if cam.Frustum.IntersectsAABB(b.Min, b.Max) {
			cur = append(cur, world.SectorMesh(i)...)
			inRun = true
			continue
		}
		if inRun {
			runs = append(runs, cur)
			cur, inRun = nil, false
		}
	}
	if inRun {
		runs = append(runs, cur)
	}
	return runs
}

func TestStreamEverythingVisible(t *testing.T) {
	world := checkerWorld(t, 8)
	buf := NewMemoryBuffer(len(world.Mesh))
	s := NewStreamer(world.Sectors, world.Mesh, buf)

	cam := newCamera(mgl32.Vec3{4, 40, 4}, 0, -math.Pi/2, math.Pi/2)
	r, err := s.Stream(cam)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if r.First != 0 || r.Count != len(world.Mesh) {
		t.Errorf("range = %+v, want 0..%d", r, len(world.Mesh))
	}
	if !reflect.DeepEqual(buf.Contents(r), world.Mesh) {
		t.Error("streamed faces differ from the world mesh")
	}
	if s.Runs() != 1 {
		t.Errorf("Runs() = %d, want a single bulk copy", s.Runs())
	}
	if s.VisibleSectors() != len(world.Sectors) {
		t.Errorf("VisibleSectors() = %d, want %d", s.VisibleSectors(), len(world.Sectors))
	}
	if r.VertexCount() != int32(len(world.Mesh)*6) || r.FirstVertex() != 0 {
		t.Errorf("vertex range %d+%d", r.FirstVertex(), r.VertexCount())
	}
}

func TestStreamNothingVisible(t *testing.T) {
	world := checkerWorld(t, 6)
	buf := NewMemoryBuffer(len(world.Mesh))
	s := NewStreamer(world.Sectors, world.Mesh, buf)

	cam := newCamera(mgl32.Vec3{3, 40, 3}, 0, math.Pi/2, math.Pi/2)
	r, err := s.Stream(cam)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if !r.Empty() {
		t.Errorf("range = %+v, want empty", r)
	}
	if buf.Mapped() {
		t.Error("buffer left mapped")
	}
}

func TestStreamForwardOrder(t *testing.T) {
	world := checkerWorld(t, 10)
	buf := NewMemoryBuffer(len(world.Mesh))
	s := NewStreamer(world.Sectors, world.Mesh, buf)

	cam := newCamera(mgl32.Vec3{5, 2, 5}, math.Pi/2, -0.2, 0.6)
	if cam.Dir.Z() <= 0 {
		t.Fatalf("camera should look down +Z, dir %v", cam.Dir)
	}

	r, err := s.Stream(cam)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if r.Count == 0 || r.Count >= len(world.Mesh) {
		t.Fatalf("Count = %d, want a partial view of %d", r.Count, len(world.Mesh))
	}

	var want []terrain.FaceQuad
	runs := visibleRuns(world, cam)
	for _, run := range runs {
		want = append(want, run...)
	}
	if r.First != 0 {
		t.Errorf("First = %d, want 0", r.First)
	}
	if !reflect.DeepEqual(buf.Contents(r), want) {
		t.Error("forward stream is not the visible runs in storage order")
	}
	if s.Runs() != len(runs) {
		t.Errorf("Runs() = %d, want %d", s.Runs(), len(runs))
	}
}

func TestStreamBackwardOrder(t *testing.T) {
	world := checkerWorld(t, 10)
	capacity := len(world.Mesh) + 7
	buf := NewMemoryBuffer(capacity)
	s := NewStreamer(world.Sectors, world.Mesh, buf)

	cam := newCamera(mgl32.Vec3{5, 2, 5}, -math.Pi/2, -0.2, 0.6)
	if cam.Dir.Z() >= 0 {
		t.Fatalf("camera should look down -Z, dir %v", cam.Dir)
	}

	r, err := s.Stream(cam)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if r.Count == 0 {
		t.Fatal("nothing visible")
	}
	if r.First+r.Count != capacity {
		t.Errorf("range %+v does not end at the buffer end %d", r, capacity)
	}

	// Runs are laid out last-found first
	runs := visibleRuns(world, cam)
	var want []terrain.FaceQuad
	for i := len(runs) - 1; i >= 0; i-- {
		want = append(want, runs[i]...)
	}
	if !reflect.DeepEqual(buf.Contents(r), want) {
		t.Error("backward stream is not the visible runs in reverse order")
	}
}

func TestStreamIdempotent(t *testing.T) {
	world := checkerWorld(t, 12)
	buf := NewMemoryBuffer(len(world.Mesh))
	s := NewStreamer(world.Sectors, world.Mesh, buf)
	cam := newCamera(mgl32.Vec3{2, 3, 9}, -0.7, -0.3, 1.2)

	first, err := s.Stream(cam)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	firstContents := append([]terrain.FaceQuad(nil), buf.Contents(first)...)

	second, err := s.Stream(cam)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if first != second {
		t.Errorf("ranges differ: %+v then %+v", first, second)
	}
	if !reflect.DeepEqual(firstContents, buf.Contents(second)) {
		t.Error("buffer contents differ between identical frames")
	}
}

type failingBuffer struct {
	*MemoryBuffer
	mapErr, unmapErr error
	unmapped         bool
}

func (b *failingBuffer) Map() ([]terrain.FaceQuad, error) {
	if b.mapErr != nil {
		return nil, b.mapErr
	}
	return b.MemoryBuffer.Map()
}

func (b *failingBuffer) Unmap() error {
	b.unmapped = true
	if b.unmapErr != nil {
		return b.unmapErr
	}
	return b.MemoryBuffer.Unmap()
}

func TestStreamErrors(t *testing.T) {
	world := checkerWorld(t, 4)
	cam := newCamera(mgl32.Vec3{2, 20, 2}, 0, -math.Pi/2, math.Pi/2)
	errDevice := errors.New("device lost")

	t.Run("map fails", func(t *testing.T) {
		buf := &failingBuffer{MemoryBuffer: NewMemoryBuffer(len(world.Mesh)), mapErr: errDevice}
		_, err := NewStreamer(world.Sectors, world.Mesh, buf).Stream(cam)
		if !errors.Is(err, errDevice) {
			t.Errorf("expected device error, got %v", err)
		}
		if buf.unmapped {
			t.Error("unmapped a buffer that was never mapped")
		}
	})

	t.Run("unmap fails", func(t *testing.T) {
		buf := &failingBuffer{MemoryBuffer: NewMemoryBuffer(len(world.Mesh)), unmapErr: errDevice}
		r, err := NewStreamer(world.Sectors, world.Mesh, buf).Stream(cam)
		if !errors.Is(err, errDevice) {
			t.Errorf("expected device error, got %v", err)
		}
		if !r.Empty() {
			t.Errorf("range = %+v, want empty on failure", r)
		}
	})

	t.Run("buffer too small", func(t *testing.T) {
		buf := &failingBuffer{MemoryBuffer: NewMemoryBuffer(len(world.Mesh) - 1)}
		_, err := NewStreamer(world.Sectors, world.Mesh, buf).Stream(cam)
		if !errors.Is(err, ErrBufferTooSmall) {
			t.Errorf("expected ErrBufferTooSmall, got %v", err)
		}
		if !buf.unmapped || buf.Mapped() {
			t.Error("buffer not released after failure")
		}
	})
}

func TestMemoryBufferMapTwice(t *testing.T) {
	buf := NewMemoryBuffer(1)
	if _, err := buf.Map(); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if _, err := buf.Map(); !errors.Is(err, ErrAlreadyMapped) {
		t.Errorf("expected ErrAlreadyMapped, got %v", err)
	}
	if err := buf.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if err := buf.Unmap(); !errors.Is(err, ErrNotMapped) {
		t.Errorf("expected ErrNotMapped, got %v", err)
	}
}
