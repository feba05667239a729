// Package config handles terrain configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/voxel-terrain/internal/lod"
)

// ErrInvalidConfig is returned when a configuration cannot build a terrain.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all terrain settings.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Edit      EditConfig      `yaml:"edit"`
	Noise     NoiseConfig     `yaml:"noise"`
	Materials MaterialsConfig `yaml:"materials"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TerrainConfig holds the field and chunk layout.
type TerrainConfig struct {
	AxisX        int           `yaml:"axis_x"` // finest cells along x
	AxisY        int           `yaml:"axis_y"`
	AxisZ        int           `yaml:"axis_z"`
	ChunkSize    int           `yaml:"chunk_size"` // finest cells per chunk axis
	IsoLevel     float32       `yaml:"iso_level"`
	UpdateTick   int           `yaml:"update_tick"` // mesh updates run every Nth tick
	ValueMin     float32       `yaml:"value_min"`
	ValueMax     float32       `yaml:"value_max"`
	InitialValue float32       `yaml:"initial_value"`
	Levels       []LevelConfig `yaml:"levels"`
}

// LevelConfig describes one level of detail.
type LevelConfig struct {
	Divisor  int     `yaml:"divisor"`
	CellSize float32 `yaml:"cell_size"`
}

// EditConfig holds sphere edit settings.
type EditConfig struct {
	Radius float32 `yaml:"radius"` // world units
	Power  float32 `yaml:"power"`  // value added or removed per sample
}

// NoiseConfig holds heightmap seeding settings.
type NoiseConfig struct {
	Seed    int64   `yaml:"seed"`
	Alpha   float64 `yaml:"alpha"`
	Beta    float64 `yaml:"beta"`
	Octaves int32   `yaml:"octaves"`
	Scale   float64 `yaml:"scale"` // world units to noise space
}

// MaterialsConfig names the materials in tag order.
type MaterialsConfig struct {
	Names       []string  `yaml:"names"`
	BandHeights []float32 `yaml:"band_heights"` // fractions of world height
	Dir         string    `yaml:"dir"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			AxisX:        64,
			AxisY:        32,
			AxisZ:        64,
			ChunkSize:    16,
			IsoLevel:     0.5,
			UpdateTick:   3,
			ValueMin:     0,
			ValueMax:     1,
			InitialValue: 1,
			Levels: []LevelConfig{
				{Divisor: 1, CellSize: 1},
				{Divisor: 2, CellSize: 2},
				{Divisor: 4, CellSize: 4},
			},
		},
		Edit: EditConfig{
			Radius: 3,
			Power:  0.5,
		},
		Noise: NoiseConfig{
			Seed:    1337,
			Alpha:   2,
			Beta:    2,
			Octaves: 3,
			Scale:   0.02,
		},
		Materials: MaterialsConfig{
			Names:       []string{"dirt", "grass"},
			BandHeights: []float32{0.55},
		},
		Metrics: MetricsConfig{
			Namespace: "voxel_terrain",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// LevelSpecs converts the configured levels to lod specs.
func (t TerrainConfig) LevelSpecs() []lod.Spec {
	specs := make([]lod.Spec, len(t.Levels))
	for i, l := range t.Levels {
		specs[i] = lod.Spec{Divisor: l.Divisor, CellSize: l.CellSize}
	}
	return specs
}

// Validate checks the terrain layout.
func (t TerrainConfig) Validate() error {
	if t.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size %d", ErrInvalidConfig, t.ChunkSize)
	}
	for _, a := range []struct {
		name string
		v    int
	}{{"axis_x", t.AxisX}, {"axis_y", t.AxisY}, {"axis_z", t.AxisZ}} {
		if a.v <= 0 || a.v%t.ChunkSize != 0 {
			return fmt.Errorf("%w: %s %d is not a positive multiple of chunk_size %d",
				ErrInvalidConfig, a.name, a.v, t.ChunkSize)
		}
	}
	if t.UpdateTick < 1 {
		return fmt.Errorf("%w: update_tick %d", ErrInvalidConfig, t.UpdateTick)
	}
	if t.ValueMin > t.ValueMax {
		return fmt.Errorf("%w: value_min %v above value_max %v", ErrInvalidConfig, t.ValueMin, t.ValueMax)
	}
	if _, err := lod.NewTable(t.ChunkSize, t.LevelSpecs()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Terrain.Validate(); err != nil {
		return err
	}
	if len(c.Materials.Names) == 0 {
		return fmt.Errorf("%w: no materials", ErrInvalidConfig)
	}
	if len(c.Materials.BandHeights) > len(c.Materials.Names)-1 {
		return fmt.Errorf("%w: %d band heights need %d materials, have %d", ErrInvalidConfig,
			len(c.Materials.BandHeights), len(c.Materials.BandHeights)+1, len(c.Materials.Names))
	}
	if c.Edit.Radius <= 0 {
		return fmt.Errorf("%w: edit radius %v", ErrInvalidConfig, c.Edit.Radius)
	}
	return nil
}
