// Package main is the entry point for the zange-board server.
//
// main stays minimal: read configuration, create the logger, start the
// server. Everything else lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ymatsu/zange-board/internal/config"
	"github.com/ymatsu/zange-board/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.SessionSecret == "" {
		logger.Error("SESSION_SECRET must be set (e.g. openssl rand -hex 32)")
		os.Exit(1)
	}
	if cfg.AdminKey == "" {
		logger.Warn("ADMIN_KEY not set — admin endpoints are disabled")
	}

	// Make sure the directory for the SQLite file exists before opening it.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
