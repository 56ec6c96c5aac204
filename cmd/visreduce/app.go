// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package main

import (
	"fmt"

	"github.com/tomtom215/visreduce/internal/config"
	"github.com/tomtom215/visreduce/internal/engine"
	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/resultstore"
	"github.com/tomtom215/visreduce/internal/source/duckdb"
)

// app is the wiring shared by the reduce and serve commands.
type app struct {
	cfg    *config.Config
	engine *engine.Engine
	store  *resultstore.Store
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Logging.ToLogging())
	return cfg, nil
}

func duckdbOptions(cfg *config.Config) duckdb.Options {
	return duckdb.Options{
		Threads:   cfg.Table.Threads,
		MaxMemory: cfg.Table.MaxMemory,
	}
}

// newApp loads the mapping file, opens the result store when caching is
// enabled and builds the engine over the configured DuckDB table.
func newApp(cfg *config.Config) (*app, error) {
	m, err := mapping.Load(cfg.Mapping.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}

	var store *resultstore.Store
	if cfg.Cache.Enabled {
		store, err = resultstore.Open(resultstore.Config{
			Path:       cfg.Cache.Path,
			InMemory:   cfg.Cache.InMemory,
			TTL:        cfg.Cache.TTL,
			SyncWrites: cfg.Cache.SyncWrites,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open result store: %w", err)
		}
	}

	open := duckdb.Opener(cfg.Table.Path, cfg.Table.Name, duckdbOptions(cfg))
	logging.Info().
		Str("table_path", cfg.Table.Path).
		Str("table", cfg.Table.Name).
		Bool("cache", store != nil).
		Msg("Configuration loaded")

	return &app{
		cfg:    cfg,
		engine: engine.New(cfg.Table.Name, open, m, store),
		store:  store,
	}, nil
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing result store")
	}
}
