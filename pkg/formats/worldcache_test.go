package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

func compileTestWorld(t *testing.T) *terrain.World {
	t.Helper()
	heights, err := terrain.NewHeightGrid(4, 3, []uint8{
		1, 1, 2, 0,
		1, 1, 2, 3,
		4, 0, 2, 3,
	})
	if err != nil {
		t.Fatalf("NewHeightGrid: %v", err)
	}
	materials, err := terrain.NewMaterialGrid(4, 3, []uint8{
		0, 0, 1, 1,
		0, 0, 1, 2,
		3, 3, 1, 2,
	})
	if err != nil {
		t.Fatalf("NewMaterialGrid: %v", err)
	}
	world, err := terrain.Compile(heights, materials)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return world
}

func encodeCache(t *testing.T, c *WorldCache) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteWorldCache(&buf, c); err != nil {
		t.Fatalf("WriteWorldCache: %v", err)
	}
	return buf.Bytes()
}

func TestWorldCache_RoundTrip(t *testing.T) {
	world := compileTestWorld(t)
	data := encodeCache(t, &WorldCache{ModTime: 1234567890, World: world})

	if string(data[:4]) != "SWCW" {
		t.Errorf("magic = %q, want SWCW", data[:4])
	}

	got, err := ReadWorldCache(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadWorldCache failed: %v", err)
	}

	if got.ModTime != 1234567890 {
		t.Errorf("expected mod time 1234567890, got %d", got.ModTime)
	}
	if !reflect.DeepEqual(got.World.Heights.Cells(), world.Heights.Cells()) {
		t.Error("heights differ after reload")
	}
	if !reflect.DeepEqual(got.World.Materials.Cells(), world.Materials.Cells()) {
		t.Error("materials differ after reload")
	}
	if !reflect.DeepEqual(got.World.Sectors, world.Sectors) {
		t.Errorf("sectors differ after reload:\n got %+v\nwant %+v", got.World.Sectors, world.Sectors)
	}
	if !reflect.DeepEqual(got.World.Mesh, world.Mesh) {
		t.Error("mesh differs after reload")
	}
	if !reflect.DeepEqual(got.World.Edges, world.Edges) {
		t.Error("edges differ after reload")
	}
}

func TestWorldCache_Matches(t *testing.T) {
	c := &WorldCache{ModTime: 42, World: compileTestWorld(t)}

	tests := []struct {
		name    string
		modTime int64
		w, d    int
		want    bool
	}{
		{"same level", 42, 4, 3, true},
		{"level edited", 43, 4, 3, false},
		{"grid resized", 42, 5, 3, false},
		{"grid transposed", 42, 3, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Matches(tt.modTime, tt.w, tt.d); got != tt.want {
				t.Errorf("Matches(%d, %d, %d) = %v, want %v", tt.modTime, tt.w, tt.d, got, tt.want)
			}
		})
	}
}

func TestReadWorldCache_InvalidMagic(t *testing.T) {
	data := encodeCache(t, &WorldCache{World: compileTestWorld(t)})
	copy(data, "GRAT")

	_, err := ReadWorldCache(bytes.NewReader(data))
	if !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestReadWorldCache_UnsupportedVersion(t *testing.T) {
	data := encodeCache(t, &WorldCache{World: compileTestWorld(t)})
	binary.LittleEndian.PutUint16(data[4:], WorldCacheVersion+1)

	_, err := ReadWorldCache(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestReadWorldCache_Truncated(t *testing.T) {
	data := encodeCache(t, &WorldCache{World: compileTestWorld(t)})

	for _, n := range []int{0, 3, 10, 20, 24, len(data) / 2} {
		if _, err := ReadWorldCache(bytes.NewReader(data[:n])); err == nil {
			t.Errorf("expected error for %d of %d bytes", n, len(data))
		}
	}
}

func TestReadWorldCache_CorruptSectors(t *testing.T) {
	world := compileTestWorld(t)
	broken := *world
	broken.Sectors = append([]terrain.Sector(nil), world.Sectors...)
	broken.Sectors[0].Faces.Length++

	data := encodeCache(t, &WorldCache{World: &broken})
	_, err := ReadWorldCache(bytes.NewReader(data))
	if !errors.Is(err, terrain.ErrCorruptWorld) {
		t.Errorf("expected ErrCorruptWorld, got %v", err)
	}
}

func TestWorldCacheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "level.swc")
	world := compileTestWorld(t)

	if err := WriteWorldCacheFile(path, &WorldCache{ModTime: 7, World: world}); err != nil {
		t.Fatalf("WriteWorldCacheFile failed: %v", err)
	}
	got, err := ParseWorldCacheFile(path)
	if err != nil {
		t.Fatalf("ParseWorldCacheFile failed: %v", err)
	}
	if !got.Matches(7, 4, 3) {
		t.Error("reloaded cache does not match its level")
	}
	if matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.swc.*")); len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}

	if _, err := ParseWorldCacheFile(filepath.Join(t.TempDir(), "missing.swc")); err == nil {
		t.Error("expected error for missing file")
	}
}
