package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dshills/phpsymbols/internal/config"
	"github.com/dshills/phpsymbols/internal/logging"
	"github.com/dshills/phpsymbols/internal/storage"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/internal/watcher"
	"github.com/dshills/phpsymbols/internal/workspace"
)

// app holds the components shared by every command
type app struct {
	cfg       config.Config
	log       *slog.Logger
	catalog   storage.Catalog
	workspace *workspace.Workspace
	watcher   *watcher.Watcher
}

func newApp(configPath string, watch bool) (*app, error) {
	log := logging.New(logging.LoadConfigFromEnv("phpsymbols"))

	cfg, err := config.Load(configPath)
	if err != nil {
		// malformed values keep their defaults
		log.Warn("configuration problems", "error", err)
	}

	a := &app{cfg: cfg, log: log}
	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		store, err := storage.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize catalog: %w", err)
		}
		a.catalog = store
		log.Info("catalog opened", "path", cfg.DBPath, "driver", storage.DriverName)
	}

	a.workspace = workspace.New(workspace.Options{
		Config:  cfg,
		Parser:  syntax.NewParser(),
		Catalog: a.catalog,
		Logger:  log,
	})

	if watch && cfg.Watch {
		w, err := watcher.New(cfg, a.workspace, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to start watcher: %w", err)
		}
		a.watcher = w
	}
	return a, nil
}

// Close stops background work and closes the catalog
func (a *app) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("failed to close watcher", "error", err)
		}
	}
	if a.workspace != nil {
		a.workspace.Shutdown()
	}
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			a.log.Warn("failed to close catalog", "error", err)
		}
	}
}
