// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package source defines the chunked row-block contract between visibility
tables and the reduction engine.

A Table delivers rows in fixed-size chunks through Iterate. Each Chunk is
columnar: per-row scalars as slices, and the weight, visibility and flag
cubes as cube.Raw values with degenerate axes squeezed away. Reducers
restore the canonical (row, channel, polarization) layout themselves.

Scoped Acquisition:

Tables hold external resources (a DuckDB connection, an open file), so
callers go through WithTable, which closes the table on every exit path:

	err := source.WithTable(ctx, opener, func(t source.Table) error {
	    acc, err := source.Reduce(ctx, t, req, newAccumulator(), process)
	    ...
	})

Implementations:
  - synthetic: in-memory rows, used by tests and the demo generator
  - duckdb: rows stored in a DuckDB table, streamed with one ordered query
*/
package source
