// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Shadow   ShadowConfig   `yaml:"shadow"`
	Cache    CacheConfig    `yaml:"cache"`
	Level    LevelConfig    `yaml:"level"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	ShowFPS    bool `yaml:"show_fps"`

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// CameraConfig holds the camera projection and movement constants.
// Angles are in radians.
type CameraConfig struct {
	NearClip         float32 `yaml:"near_clip"`
	InitFOV          float32 `yaml:"init_fov"`
	FOVChange        float32 `yaml:"fov_change"`
	EyeHeight        float32 `yaml:"eye_height"`
	JumpVelocity     float32 `yaml:"jump_velocity"`
	Gravity          float32 `yaml:"gravity"`
	MoveSpeed        float32 `yaml:"move_speed"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
}

// AverageFOV is the FOV the shadow cascades are fitted with, halfway
// through the FOV change.
func (c CameraConfig) AverageFOV() float32 {
	return c.InitFOV + c.FOVChange*0.5
}

// ShadowConfig holds cascaded shadow map settings.
type ShadowConfig struct {
	NumCascades       int     `yaml:"num_cascades"`
	Resolution        int     `yaml:"resolution"`
	SubFrustumScale   float32 `yaml:"sub_frustum_scale"`
	LinearSplitWeight float32 `yaml:"linear_split_weight"`
	DepthBits         int     `yaml:"depth_bits"`
}

// CacheConfig controls the compiled world cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // Empty means next to the level file
}

// DirFor returns the cache directory for a level file, or "" when the
// cache is disabled.
func (c CacheConfig) DirFor(levelPath string) string {
	if !c.Enabled {
		return ""
	}
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join(filepath.Dir(levelPath), ".stepworld-cache")
}

// LevelConfig selects the level to load.
type LevelConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MaxCascades is the number of cascades the world shader can sample.
const MaxCascades = 4

// Validation errors.
var (
	ErrInvalidCascades   = errors.New("num_cascades must be between 1 and 4")
	ErrInvalidResolution = errors.New("shadow resolution must be positive")
	ErrInvalidWeight     = errors.New("linear_split_weight must be within [0, 1]")
	ErrInvalidScale      = errors.New("sub_frustum_scale must be positive")
	ErrInvalidDepthBits  = errors.New("depth_bits must be 16, 24 or 32")
	ErrInvalidCamera     = errors.New("invalid camera settings")
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			ShowFPS:    false,

			ScreenshotDir: "screenshots",
		},
		Camera: CameraConfig{
			NearClip:         0.25,
			InitFOV:          math.Pi / 2,
			FOVChange:        math.Pi / 18,
			EyeHeight:        0.5,
			JumpVelocity:     5.5,
			Gravity:          13,
			MoveSpeed:        4,
			MouseSensitivity: 0.003,
		},
		Shadow: ShadowConfig{
			NumCascades:       3,
			Resolution:        2048,
			SubFrustumScale:   1.1,
			LinearSplitWeight: 0.5,
			DepthBits:         24,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the settings that would otherwise fail deep inside
// shadow or camera setup.
func (c *Config) Validate() error {
	s := c.Shadow
	if s.NumCascades < 1 || s.NumCascades > MaxCascades {
		return fmt.Errorf("%w: got %d", ErrInvalidCascades, s.NumCascades)
	}
	if s.Resolution <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidResolution, s.Resolution)
	}
	if s.LinearSplitWeight < 0 || s.LinearSplitWeight > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidWeight, s.LinearSplitWeight)
	}
	if s.SubFrustumScale <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidScale, s.SubFrustumScale)
	}
	switch s.DepthBits {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidDepthBits, s.DepthBits)
	}

	cam := c.Camera
	if cam.NearClip <= 0 {
		return fmt.Errorf("%w: near_clip %g", ErrInvalidCamera, cam.NearClip)
	}
	if cam.InitFOV <= 0 || cam.AverageFOV() >= math.Pi {
		return fmt.Errorf("%w: fov %g (+%g)", ErrInvalidCamera, cam.InitFOV, cam.FOVChange)
	}
	if cam.Gravity <= 0 {
		return fmt.Errorf("%w: gravity %g", ErrInvalidCamera, cam.Gravity)
	}
	return nil
}
