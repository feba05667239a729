// Package main is the entry point for the voxel terrain demo host.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/voxel-terrain/internal/config"
	"github.com/Faultbox/voxel-terrain/internal/logger"
)

var (
	flagTicks = flag.Int("ticks", 60, "Number of simulated ticks")
	flagSave  = flag.Bool("save-config", false, "Write the effective config to the user config dir")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Voxel Terrain ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if *flagSave {
		if err := cfg.Save(); err != nil {
			logger.Error("failed to save config", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
	}

	d, err := newDemo(cfg)
	if err != nil {
		logger.Error("failed to create terrain", zap.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Run(*flagTicks); err != nil {
		logger.Error("demo error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("demo finished normally")
}
