// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package logging provides the zerolog-based structured logging used across
// Visreduce.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from main via Init
//   - JSON output for services, console output for interactive use
//   - Run IDs carried in the context, so every line of one reduction run
//     can be correlated
//   - RunLogger with domain methods for the reduction lifecycle
//   - An slog adapter for sutureslog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "console"})
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Str("plot", "amptime").Msg("Reduction started")
//
// # Configuration
//
// Environment Variables (read by the config package):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// Always terminate a chain with .Msg() or .Send(); an unterminated event is
// never written.
//
// # Thread Safety
//
// All exported functions are safe for concurrent use.
package logging
