package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test terrain defaults
	if cfg.Terrain.ChunkSize != 16 {
		t.Errorf("expected chunk size 16, got %d", cfg.Terrain.ChunkSize)
	}
	if cfg.Terrain.UpdateTick != 3 {
		t.Errorf("expected update tick 3, got %d", cfg.Terrain.UpdateTick)
	}
	if len(cfg.Terrain.Levels) != 3 {
		t.Errorf("expected 3 levels, got %d", len(cfg.Terrain.Levels))
	}
	if cfg.Terrain.Levels[0].Divisor != 1 {
		t.Errorf("expected level 0 divisor 1, got %d", cfg.Terrain.Levels[0].Divisor)
	}

	// Test materials defaults
	if len(cfg.Materials.Names) != 2 {
		t.Errorf("expected 2 materials, got %d", len(cfg.Materials.Names))
	}
	if len(cfg.Materials.BandHeights) != 1 || cfg.Materials.BandHeights[0] != 0.55 {
		t.Errorf("expected a single band at 0.55, got %v", cfg.Materials.BandHeights)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  axis_x: 32
  axis_y: 16
  axis_z: 48
  chunk_size: 8
  iso_level: 0.25
  update_tick: 5
  levels:
    - divisor: 1
      cell_size: 0.5
    - divisor: 8
      cell_size: 4

edit:
  radius: 2
  power: 0.1

noise:
  seed: 99
  octaves: 4

materials:
  names: [sand, grass, rock]
  band_heights: [0.3, 0.7]
  dir: "materials"

metrics:
  namespace: "test"

logging:
  level: "debug"
  log_file: "terrain.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Terrain.AxisZ != 48 {
		t.Errorf("expected axis_z 48, got %d", cfg.Terrain.AxisZ)
	}
	if cfg.Terrain.ChunkSize != 8 {
		t.Errorf("expected chunk size 8, got %d", cfg.Terrain.ChunkSize)
	}
	if cfg.Terrain.IsoLevel != 0.25 {
		t.Errorf("expected iso level 0.25, got %f", cfg.Terrain.IsoLevel)
	}
	if len(cfg.Terrain.Levels) != 2 || cfg.Terrain.Levels[1].Divisor != 8 {
		t.Errorf("expected two levels ending in divisor 8, got %+v", cfg.Terrain.Levels)
	}

	// Unset keys keep their defaults
	if cfg.Terrain.ValueMax != 1 {
		t.Errorf("expected default value_max 1, got %f", cfg.Terrain.ValueMax)
	}
	if cfg.Noise.Alpha != 2 {
		t.Errorf("expected default alpha 2, got %f", cfg.Noise.Alpha)
	}

	if cfg.Noise.Seed != 99 {
		t.Errorf("expected seed 99, got %d", cfg.Noise.Seed)
	}
	if len(cfg.Materials.Names) != 3 || cfg.Materials.Names[2] != "rock" {
		t.Errorf("expected materials [sand grass rock], got %v", cfg.Materials.Names)
	}
	if cfg.Materials.Dir != "materials" {
		t.Errorf("expected materials dir 'materials', got %s", cfg.Materials.Dir)
	}
	if cfg.Metrics.Namespace != "test" {
		t.Errorf("expected namespace 'test', got %s", cfg.Metrics.Namespace)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "terrain.log" {
		t.Errorf("expected log file 'terrain.log', got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  axis_x: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"axis not a chunk multiple", func(c *Config) { c.Terrain.AxisX = 65 }},
		{"zero chunk size", func(c *Config) { c.Terrain.ChunkSize = 0 }},
		{"zero update tick", func(c *Config) { c.Terrain.UpdateTick = 0 }},
		{"inverted value range", func(c *Config) { c.Terrain.ValueMin, c.Terrain.ValueMax = 2, 1 }},
		{"no levels", func(c *Config) { c.Terrain.Levels = nil }},
		{"level 0 not finest", func(c *Config) { c.Terrain.Levels[0].Divisor = 2 }},
		{"divisor does not divide chunk", func(c *Config) { c.Terrain.Levels[1].Divisor = 3 }},
		{"levels get finer", func(c *Config) {
			c.Terrain.Levels[1].Divisor = 4
			c.Terrain.Levels[2].Divisor = 2
		}},
		{"no materials", func(c *Config) { c.Materials.Names = nil }},
		{"too many bands", func(c *Config) { c.Materials.BandHeights = []float32{0.2, 0.5} }},
		{"zero edit radius", func(c *Config) { c.Edit.Radius = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Keep the user's real config out of the search
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  chunk_size: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestFindConfigFilePrefersNamedFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	for _, name := range []string{"config.yaml", "voxel-terrain.yaml"} {
		if err := os.WriteFile(name, []byte("edit:\n  radius: 2\n"), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	if path := findConfigFile(); filepath.Base(path) != "voxel-terrain.yaml" {
		t.Errorf("expected voxel-terrain.yaml to win, got %s", path)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(configPath, []byte("noise:\n  seed: 77\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvConfigPath, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Noise.Seed != 77 {
		t.Errorf("expected seed 77 from $%s, got %d", EnvConfigPath, cfg.Noise.Seed)
	}
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  chunksize: 8\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Terrain.ChunkSize != 16 {
		t.Errorf("empty file changed chunk size to %d", cfg.Terrain.ChunkSize)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "seed flag",
			setup: func() {
				*flagSeed = 7
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Noise.Seed != 7 {
					t.Errorf("expected seed 7, got %d", cfg.Noise.Seed)
				}
			},
			teardown: func() {
				*flagSeed = 0
			},
		},
		{
			name: "update tick flag",
			setup: func() {
				*flagUpdateTick = 10
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.UpdateTick != 10 {
					t.Errorf("expected update tick 10, got %d", cfg.Terrain.UpdateTick)
				}
			},
			teardown: func() {
				*flagUpdateTick = 0
			},
		},
		{
			name: "iso flag",
			setup: func() {
				*flagIso = "-0.5"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.IsoLevel != -0.5 {
					t.Errorf("expected iso level -0.5, got %f", cfg.Terrain.IsoLevel)
				}
			},
			teardown: func() {
				*flagIso = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags: %v", err)
			}

			// Verify
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsBadIso(t *testing.T) {
	*flagIso = "high"
	defer func() { *flagIso = "" }()

	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for non-numeric -iso")
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  update_tick: 4
  iso_level: 0.5
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagUpdateTick = 9
	defer func() {
		*flagConfig = ""
		*flagUpdateTick = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Update tick should be from flag (9), not file (4)
	if cfg.Terrain.UpdateTick != 9 {
		t.Errorf("expected update tick 9 from flag, got %d", cfg.Terrain.UpdateTick)
	}

	// Iso level should be from file since no flag override
	if cfg.Terrain.IsoLevel != 0.5 {
		t.Errorf("expected iso level 0.5 from file, got %f", cfg.Terrain.IsoLevel)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  axis_x: 10\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Noise.Seed = 4242
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Noise.Seed != 4242 {
		t.Errorf("expected seed 4242 after reload, got %d", loaded.Noise.Seed)
	}
}
