package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// World cache errors.
var (
	ErrInvalidMagic       = errors.New("invalid world cache magic: expected 'SWCW'")
	ErrUnsupportedVersion = errors.New("unsupported world cache version")
	ErrTruncatedCache     = errors.New("truncated world cache data")
)

// WorldCacheVersion is the only cache layout this package reads and writes.
const WorldCacheVersion uint16 = 1

var worldCacheMagic = [4]byte{'S', 'W', 'C', 'W'}

// WorldCache is a compiled world together with the identity of the level
// file it was compiled from.
type WorldCache struct {
	ModTime int64 // Level file modification time, Unix nanoseconds
	World   *terrain.World
}

// Matches reports whether the cache was built from a level file with the
// given modification time and grid size.
func (c *WorldCache) Matches(modTime int64, width, depth int) bool {
	return c.ModTime == modTime &&
		c.World.Heights.Width() == width &&
		c.World.Heights.Depth() == depth
}

// worldCacheHeader is stored uncompressed so a stale cache can be
// rejected without inflating the payload.
type worldCacheHeader struct {
	Magic   [4]byte
	Version uint16
	Width   uint16
	Depth   uint16
	_       uint16
	ModTime int64
}

type sectorRecord struct {
	Origin     [2]uint8
	Size       [2]uint8
	MinVisible uint8
	MaxVisible uint8
	Material   uint8
	_          uint8
	Start      uint32
	Length     uint32
}

// WriteWorldCache encodes c to w. The payload after the header is an lz4
// frame holding the grids, sectors, face mesh and edge mesh.
func WriteWorldCache(w io.Writer, c *WorldCache) error {
	world := c.World
	hdr := worldCacheHeader{
		Magic:   worldCacheMagic,
		Version: WorldCacheVersion,
		Width:   uint16(world.Heights.Width()),
		Depth:   uint16(world.Heights.Depth()),
		ModTime: c.ModTime,
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("writing cache header: %w", err)
	}

	zw := lz4.NewWriter(w)
	if err := writePayload(zw, world); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing cache payload: %w", err)
	}
	return nil
}

func writePayload(w io.Writer, world *terrain.World) error {
	if _, err := w.Write(world.Heights.Cells()); err != nil {
		return fmt.Errorf("writing heights: %w", err)
	}
	if _, err := w.Write(world.Materials.Cells()); err != nil {
		return fmt.Errorf("writing materials: %w", err)
	}

	records := make([]sectorRecord, len(world.Sectors))
	for i, s := range world.Sectors {
		records[i] = sectorRecord{
			Origin:     s.Origin,
			Size:       s.Size,
			MinVisible: s.MinVisible,
			MaxVisible: s.MaxVisible,
			Material:   s.Material,
			Start:      uint32(s.Faces.Start),
			Length:     uint32(s.Faces.Length),
		}
	}

	for _, part := range []struct {
		name string
		n    int
		data any
	}{
		{"sectors", len(records), records},
		{"mesh", len(world.Mesh), world.Mesh},
		{"edges", len(world.Edges), world.Edges},
	} {
		if err := binary.Write(w, binary.LittleEndian, uint32(part.n)); err != nil {
			return fmt.Errorf("writing %s count: %w", part.name, err)
		}
		if err := binary.Write(w, binary.LittleEndian, part.data); err != nil {
			return fmt.Errorf("writing %s: %w", part.name, err)
		}
	}
	return nil
}

// ReadWorldCache decodes a cache written by WriteWorldCache and checks the
// world's sector layout before returning it.
func ReadWorldCache(r io.Reader) (*WorldCache, error) {
	var hdr worldCacheHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedCache)
	}
	if hdr.Magic != worldCacheMagic {
		return nil, ErrInvalidMagic
	}
	if hdr.Version != WorldCacheVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}

	width, depth := int(hdr.Width), int(hdr.Depth)
	cells := width * depth
	zr := lz4.NewReader(r)

	heightCells := make([]uint8, cells)
	materialCells := make([]uint8, cells)
	if _, err := io.ReadFull(zr, heightCells); err != nil {
		return nil, fmt.Errorf("%w: reading heights: %v", ErrTruncatedCache, err)
	}
	if _, err := io.ReadFull(zr, materialCells); err != nil {
		return nil, fmt.Errorf("%w: reading materials: %v", ErrTruncatedCache, err)
	}
	heights, err := terrain.NewHeightGrid(width, depth, heightCells)
	if err != nil {
		return nil, err
	}
	materials, err := terrain.NewMaterialGrid(width, depth, materialCells)
	if err != nil {
		return nil, err
	}

	// A cell yields at most a flat face and four walls
	records, err := readSlice[sectorRecord](zr, "sectors", cells)
	if err != nil {
		return nil, err
	}
	mesh, err := readSlice[terrain.FaceQuad](zr, "mesh", 5*cells)
	if err != nil {
		return nil, err
	}
	edges, err := readSlice[terrain.FaceQuad](zr, "edges", 2*(width+depth))
	if err != nil {
		return nil, err
	}

	sectors := make([]terrain.Sector, len(records))
	for i, rec := range records {
		sectors[i] = terrain.Sector{
			Origin:     rec.Origin,
			Size:       rec.Size,
			MinVisible: rec.MinVisible,
			MaxVisible: rec.MaxVisible,
			Material:   rec.Material,
			Faces:      terrain.Range{Start: int(rec.Start), Length: int(rec.Length)},
		}
	}

	world := &terrain.World{
		Heights:   heights,
		Materials: materials,
		Sectors:   sectors,
		Mesh:      mesh,
		Edges:     edges,
	}
	if err := world.Check(); err != nil {
		return nil, fmt.Errorf("cached world: %w", err)
	}
	return &WorldCache{ModTime: hdr.ModTime, World: world}, nil
}

func readSlice[T any](r io.Reader, name string, limit int) ([]T, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: reading %s count", ErrTruncatedCache, name)
	}
	if int(n) > limit {
		return nil, fmt.Errorf("%w: %d %s exceeds limit %d", ErrTruncatedCache, n, name, limit)
	}
	out := make([]T, n)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: reading %s", ErrTruncatedCache, name)
	}
	return out, nil
}

// ParseWorldCacheFile reads a world cache from disk.
func ParseWorldCacheFile(path string) (*WorldCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world cache: %w", err)
	}
	return ReadWorldCache(bytes.NewReader(data))
}

// WriteWorldCacheFile writes c to path through a temporary file in the
// same directory, so readers never see a partial cache.
func WriteWorldCacheFile(path string, c *WorldCache) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteWorldCache(tmp, c); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
