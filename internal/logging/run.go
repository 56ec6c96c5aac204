// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunLogger logs the lifecycle of one reduction run. Every entry carries
// the run ID and the plot kind.
type RunLogger struct {
	logger zerolog.Logger
}

// NewRunLogger derives a RunLogger from ctx.
func NewRunLogger(ctx context.Context, plot string) *RunLogger {
	return &RunLogger{
		logger: Ctx(ctx).With().Str("component", "reducer").Str("plot", plot).Logger(),
	}
}

// Logger exposes the underlying logger.
func (r *RunLogger) Logger() *zerolog.Logger {
	return &r.logger
}

// Started logs the selection being reduced.
func (r *RunLogger) Started(table string, columns []string, chunkSize int) {
	r.logger.Info().
		Str("table", table).
		Strs("columns", columns).
		Int("chunk_size", chunkSize).
		Msg("Reduction started")
}

// Ignored logs a setting the plot kind does not honour.
func (r *RunLogger) Ignored(setting, value string) {
	r.logger.Warn().
		Str("setting", setting).
		Str("value", value).
		Msg("Setting ignored for this plot")
}

// Defaulted logs a setting that was filled in.
func (r *RunLogger) Defaulted(setting, value string) {
	r.logger.Warn().
		Str("setting", setting).
		Str("value", value).
		Msg("Setting defaulted")
}

// Chunk logs one processed chunk at debug level.
func (r *RunLogger) Chunk(index, rows int, datasets int) {
	r.logger.Debug().
		Int("chunk", index).
		Int("rows", rows).
		Int("datasets", datasets).
		Msg("Chunk reduced")
}

// Phase logs the duration of a named phase ("query", "solint", ...).
func (r *RunLogger) Phase(name string, took time.Duration) {
	r.logger.Info().
		Str("phase", name).
		Dur("took", took).
		Msg("Phase complete")
}

// Rejected logs the weight-threshold rejection total.
func (r *RunLogger) Rejected(n int64, threshold float64) {
	if n == 0 {
		return
	}
	r.logger.Info().
		Int64("rejected", n).
		Float64("threshold", threshold).
		Msg("Points rejected by weight threshold")
}

// Finished logs the run summary.
func (r *RunLogger) Finished(rows, chunks, datasets int, took time.Duration) {
	r.logger.Info().
		Int("rows", rows).
		Int("chunks", chunks).
		Int("datasets", datasets).
		Dur("took", took).
		Msg("Reduction finished")
}

// Failed logs a run that aborted.
func (r *RunLogger) Failed(err error) {
	r.logger.Error().Err(err).Msg("Reduction failed")
}
