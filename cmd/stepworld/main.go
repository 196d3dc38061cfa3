// Package main is the entry point for the stepworld viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/stepworld/internal/assets"
	"github.com/Faultbox/stepworld/internal/config"
	"github.com/Faultbox/stepworld/internal/game"
	"github.com/Faultbox/stepworld/internal/level"
	"github.com/Faultbox/stepworld/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== stepworld ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Level.Path == "" {
		logger.Fatal("no level given; pass -level or set level.path in config.yaml")
	}

	lvl, err := level.LoadFile(cfg.Level.Path)
	if err != nil {
		logger.Fatal("failed to load level", zap.Error(err))
	}

	worlds := assets.NewManager(cfg.Cache.DirFor(lvl.Path))
	defer worlds.Close()

	world, err := worlds.World(lvl)
	if err != nil {
		logger.Fatal("failed to compile world", zap.Error(err))
	}

	g, err := game.New(cfg, lvl, world)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
