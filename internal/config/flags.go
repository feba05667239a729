package config

import (
	"flag"
	"fmt"
	"strconv"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagSeed       = flag.Int64("seed", 0, "Noise seed (0 keeps the configured seed)")
	flagUpdateTick = flag.Int("update-tick", 0, "Run mesh updates every N ticks")
	flagIso        = flag.String("iso", "", "Isosurface threshold")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != 0 {
		cfg.Noise.Seed = *flagSeed
	}
	if *flagUpdateTick > 0 {
		cfg.Terrain.UpdateTick = *flagUpdateTick
	}
	if *flagIso != "" {
		iso, err := strconv.ParseFloat(*flagIso, 32)
		if err != nil {
			return fmt.Errorf("parsing -iso: %w", err)
		}
		cfg.Terrain.IsoLevel = float32(iso)
	}
	return nil
}
