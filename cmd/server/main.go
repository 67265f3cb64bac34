// Package main is the entry point for the blog API server. It stays minimal:
// build the logger, load configuration, hand both to the server package.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Make sure the database directory exists before sqlite tries to create
	// the file inside it.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		DBPath:     cfg.DBPath,
		JWTSecret:  cfg.JWTSecret,
		BcryptCost: cfg.BcryptCost,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
