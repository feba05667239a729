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

// EnvConfigPath names a config file when -config is not given.
const EnvConfigPath = "VOXEL_TERRAIN_CONFIG"

// fileNames are searched in the working directory, then in ConfigDir.
var fileNames = []string{"voxel-terrain.yaml", "config.yaml"}

// Load builds the terrain configuration: defaults, then the first config
// file found, then flags. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolveConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := applyFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath picks -config, then $VOXEL_TERRAIN_CONFIG, then the
// search path.
func resolveConfigPath() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return findConfigFile()
}

func findConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "VoxelTerrain")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "VoxelTerrain")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "voxel-terrain")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "voxel-terrain")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so a
// misspelled terrain setting does not silently fall back to its default.
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
	return nil
}
