package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable checked when --config is not set.
const EnvConfig = "STEPWORLD_CONFIG"

// Load loads configuration with priority: defaults < file < flags.
// The merged result is validated before it is returned.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file found in the working
// directory or the user config directory.
func findConfigFile() string {
	candidates := []string{
		"stepworld.yaml",
		"config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "StepWorld")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "StepWorld")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "stepworld")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "stepworld")
	}
}

// filePaths picks out the path settings a config file sets explicitly.
type filePaths struct {
	Graphics struct {
		ScreenshotDir string `yaml:"screenshot_dir"`
	} `yaml:"graphics"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Level struct {
		Path string `yaml:"path"`
	} `yaml:"level"`
	Logging struct {
		LogFile string `yaml:"log_file"`
	} `yaml:"logging"`
}

// loadFromFile merges a YAML file into cfg. Keys missing from the file
// keep their current values; unknown keys are an error. Relative paths
// set by the file are taken relative to the file's directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	var set filePaths
	if err := yaml.Unmarshal(data, &set); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	resolve := func(dst *string, fromFile string) {
		if fromFile != "" && !filepath.IsAbs(fromFile) {
			*dst = filepath.Join(dir, fromFile)
		}
	}
	resolve(&cfg.Graphics.ScreenshotDir, set.Graphics.ScreenshotDir)
	resolve(&cfg.Cache.Dir, set.Cache.Dir)
	resolve(&cfg.Level.Path, set.Level.Path)
	resolve(&cfg.Logging.LogFile, set.Logging.LogFile)
	return nil
}
