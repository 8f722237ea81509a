package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/internal/database"
	"github.com/actionsum/focusday/internal/metrics"
	"github.com/actionsum/focusday/internal/reporter"
	"github.com/actionsum/focusday/internal/store"
)

// app bundles the pieces every command needs.
type app struct {
	cfg      *config.Config
	loc      *time.Location
	clock    clock.Clock
	logger   *zap.Logger
	store    store.Store
	files    *store.FileStore     // set for the files backend
	db       *database.Repository // set for the sqlite backend
	reporter *reporter.Reporter
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc, clock: clock.SystemClock{}, logger: logger}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		path, err := cfg.DBPath()
		if err != nil {
			return nil, err
		}
		repo, err := database.Open(path, loc, a.clock, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.store, a.db = repo, repo
	default:
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, err
		}
		files, err := store.NewFileStore(dir, loc, a.clock, logger)
		if err != nil {
			return nil, err
		}
		a.store, a.files = files, files
	}

	a.reporter, err = reporter.New(cfg, a.store, a.clock, logger)
	if err != nil {
		a.store.Close()
		return nil, err
	}
	return a, nil
}

// newRecorder returns the OTLP recorder when an endpoint is configured.
func (a *app) newRecorder(ctx context.Context) metrics.Recorder {
	if a.cfg.Metrics.Endpoint == "" {
		return metrics.Noop{}
	}
	rec, err := metrics.NewExporter(ctx, a.cfg.Metrics)
	if err != nil {
		a.logger.Warn("metrics export disabled", zap.Error(err))
		return metrics.Noop{}
	}
	return rec
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
