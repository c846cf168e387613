// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command vidshare runs the video sharing API daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ManuGH/vidshare/internal/config"
	"github.com/ManuGH/vidshare/internal/daemon"
	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "storage":
			os.Exit(runStorageCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: daemon.ServiceName,
		Version: version.Version,
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	effectiveConfigPath := strings.TrimSpace(*configPath)
	if effectiveConfigPath == "" {
		effectiveConfigPath = resolveDefaultConfigPath()
	}

	loader := config.NewLoader(effectiveConfigPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	log.Reconfigure(log.Config{
		Level:   cfg.LogLevel,
		Service: daemon.ServiceName,
		Version: cfg.Version,
	})
	logger = log.WithComponent("daemon")

	source := "env+defaults"
	if effectiveConfigPath != "" {
		source = "file"
	}
	logger.Info().
		Str(log.FieldEvent, "config.loaded").
		Str("source", source).
		Str("path", effectiveConfigPath).
		Str("data_dir", cfg.DataDir).
		Msg("configuration loaded")

	rt, err := daemon.Bootstrap(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str(log.FieldEvent, "daemon.bootstrap_failed").Msg("failed to assemble runtime")
	}

	mgr, err := daemon.NewManager(cfg.Server, daemon.Deps{
		Logger:     logger,
		APIHandler: rt.API.Handler(),
	})
	if err != nil {
		_ = rt.Close(context.Background())
		logger.Fatal().Err(err).Str(log.FieldEvent, "daemon.manager_failed").Msg("failed to create manager")
	}
	rt.RegisterHooks(mgr)

	app := daemon.NewApp(mgr, config.NewHolder(cfg, loader), rt)
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.exit_error").Msg("daemon stopped with error")
		os.Exit(1)
	}
	logger.Info().Str(log.FieldEvent, "daemon.exit").Msg("daemon stopped")
}

// resolveDefaultConfigPath picks ${VIDSHARE_DATA_DIR}/config.yaml when it exists.
func resolveDefaultConfigPath() string {
	dataDir := strings.TrimSpace(config.ParseString(config.EnvPrefix+"DATA_DIR", ""))
	if dataDir == "" {
		return ""
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}
