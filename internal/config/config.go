// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package config

import (
	"time"

	"github.com/tomtom215/visreduce/internal/logging"
)

// Config holds the whole application configuration.
type Config struct {
	Table     TableConfig     `koanf:"table"`
	Mapping   MappingConfig   `koanf:"mapping"`
	Selection SelectionConfig `koanf:"selection"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// TableConfig locates the DuckDB visibility table and tunes how it is read.
type TableConfig struct {
	Path string `koanf:"path" validate:"required"`
	Name string `koanf:"name" validate:"required"`

	// Threads is the DuckDB worker count; 0 lets DuckDB decide.
	Threads   int    `koanf:"threads" validate:"gte=0"`
	MaxMemory string `koanf:"max_memory"`

	ChunkSize  int    `koanf:"chunk_size" validate:"gt=0"`
	ReadFlags  bool   `koanf:"read_flags"`
	DataColumn string `koanf:"data_column" validate:"oneof=DATA LAG_DATA"`
}

// MappingConfig locates the metadata mapping JSON written next to the table.
type MappingConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// DataDescriptionConfig selects one (frequency group, subband, polarization
// setup) triple and optionally a subset of its products.
type DataDescriptionConfig struct {
	FreqGroup int   `koanf:"freq_group" validate:"gte=0"`
	Subband   int   `koanf:"subband" validate:"gte=0"`
	PolID     int   `koanf:"pol_id" validate:"gte=0"`
	Products  []int `koanf:"products" validate:"dive,gte=0"`
}

// SelectionConfig is the default selection used by the CLI and by API
// requests that omit one.
type SelectionConfig struct {
	Channels         []int                   `koanf:"channels" validate:"dive,gte=0"`
	DataDescriptions []DataDescriptionConfig `koanf:"data_descriptions" validate:"dive"`

	AverageChannel string `koanf:"average_channel" validate:"policy"`
	AverageTime    string `koanf:"average_time" validate:"policy"`

	// Solint is a duration string with d/h/m/s units; empty disables binning.
	Solint string `koanf:"solint"`
	// TimeRanges are "start:end" pairs in seconds.
	TimeRanges []string `koanf:"time_ranges"`

	// WeightThreshold is unset when nil.
	WeightThreshold *float64 `koanf:"weight_threshold"`

	Mark string `koanf:"mark" validate:"max=256"`
}

// CacheConfig controls the badger result store.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	TTL        time.Duration `koanf:"ttl" validate:"gte=0"`
	SyncWrites bool          `koanf:"sync_writes"`
}

// ServerConfig holds the HTTP listener and rate limit settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// CORSOrigins lists the plotting front-ends allowed to call the API.
	// Empty disallows cross-origin requests.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format" validate:"oneof=json console"`
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

// ToLogging converts the section into a logging.Config.
func (l LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	cfg.Timestamp = l.Timestamp
	return cfg
}
