// Package main is the entry point for the interactive PLY viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/config"
	"github.com/Faultbox/plyview/internal/logger"
	"github.com/Faultbox/plyview/internal/mesh"
	"github.com/Faultbox/plyview/internal/viewer"
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

	logger.Info("=== plyview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Model.Path == "" {
		fmt.Fprintln(os.Stderr, "Usage: plyview [flags] <model.ply>")
		os.Exit(2)
	}

	m, err := mesh.LoadFile(cfg.Model.Path)
	if err != nil {
		logger.Error("failed to load model", zap.String("path", cfg.Model.Path), zap.Error(err))
		os.Exit(1)
	}
	if cfg.Model.Rescale {
		if err := m.RescaleToUnitCube(); err != nil {
			logger.Warn("model not rescaled", zap.Error(err))
		}
	}
	if cfg.Model.Invert {
		m.InvertNormals()
	}

	v, err := viewer.New(cfg, m)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
