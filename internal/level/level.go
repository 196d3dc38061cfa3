// Package level loads world descriptions from YAML files.
package level

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/stepworld/internal/engine/lighting"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
)

// Level errors.
var (
	ErrNoHeights    = errors.New("level has no height rows")
	ErrNegativeTime = errors.New("light cycle must not be negative")
)

// Angles is a direction towards the light in degrees.
type Angles struct {
	Azimuth   float32 `yaml:"azimuth"`
	Elevation float32 `yaml:"elevation"`
}

// Direction returns the unit vector towards the light.
func (a Angles) Direction() mgl32.Vec3 {
	return lighting.SunDirection(a.Azimuth, a.Elevation)
}

// LightSpec describes the dynamic light of a level.
type LightSpec struct {
	From         Angles  `yaml:"from"`
	To           Angles  `yaml:"to"`
	CycleSeconds float32 `yaml:"cycle_seconds"`
}

// Level is a parsed level file. Rows run along +Z, columns along +X.
type Level struct {
	Name      string      `yaml:"name"`
	Heights   [][]uint8   `yaml:"heights"`
	Materials [][]uint8   `yaml:"materials"`
	Light     LightSpec   `yaml:"light"`
	Spawn     *[3]float32 `yaml:"spawn"`

	Path    string `yaml:"-"`
	ModTime int64  `yaml:"-"` // Unix nanoseconds, 0 when parsed from memory
}

// DefaultLight is used when a level has no light section.
func DefaultLight() LightSpec {
	return LightSpec{
		From:         Angles{Azimuth: 30, Elevation: 25},
		To:           Angles{Azimuth: 150, Elevation: 65},
		CycleSeconds: 60,
	}
}

// Parse decodes a level from YAML.
func Parse(data []byte) (*Level, error) {
	lvl := &Level{Light: DefaultLight()}
	if err := yaml.Unmarshal(data, lvl); err != nil {
		return nil, fmt.Errorf("parsing level: %w", err)
	}
	if len(lvl.Heights) == 0 {
		return nil, ErrNoHeights
	}
	if lvl.Light.CycleSeconds < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeTime, lvl.Light.CycleSeconds)
	}
	return lvl, nil
}

// LoadFile reads and parses a level file, recording its modification
// time for cache validation.
func LoadFile(path string) (*Level, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}

	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lvl.Path = path
	lvl.ModTime = info.ModTime().UnixNano()
	if lvl.Name == "" {
		lvl.Name = path
	}
	return lvl, nil
}

// Grids converts the rows into validated height and material grids. A
// level without materials uses material 0 everywhere.
func (l *Level) Grids() (*terrain.HeightGrid, *terrain.MaterialGrid, error) {
	w, d, cells, err := terrain.FlattenRows(l.Heights)
	if err != nil {
		return nil, nil, fmt.Errorf("heights: %w", err)
	}
	heights, err := terrain.NewHeightGrid(w, d, cells)
	if err != nil {
		return nil, nil, err
	}

	matCells := make([]uint8, w*d)
	if len(l.Materials) > 0 {
		mw, md, mc, err := terrain.FlattenRows(l.Materials)
		if err != nil {
			return nil, nil, fmt.Errorf("materials: %w", err)
		}
		if mw != w || md != d {
			return nil, nil, fmt.Errorf("%w: heights %dx%d, materials %dx%d",
				terrain.ErrGridSizeMismatch, w, d, mw, md)
		}
		matCells = mc
	}
	materials, err := terrain.NewMaterialGrid(w, d, matCells)
	if err != nil {
		return nil, nil, err
	}
	if err := materials.ValidateMaterials(); err != nil {
		return nil, nil, err
	}
	return heights, materials, nil
}

// DynamicLight builds the level's light.
func (l *Level) DynamicLight() (*lighting.DynamicLight, error) {
	cycle := time.Duration(float64(l.Light.CycleSeconds) * float64(time.Second))
	return lighting.NewDynamicLight(l.Light.From.Direction(), l.Light.To.Direction(), cycle)
}

// SpawnPoint returns the configured spawn or the centre of the grid just
// above its highest cell.
func (l *Level) SpawnPoint(heights *terrain.HeightGrid, eyeHeight float32) mgl32.Vec3 {
	if l.Spawn != nil {
		return mgl32.Vec3(*l.Spawn)
	}
	return mgl32.Vec3{
		float32(heights.Width()) / 2,
		float32(heights.Max()) + eyeHeight,
		float32(heights.Depth()) / 2,
	}
}
