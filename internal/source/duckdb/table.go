// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package duckdb stores visibility rows in a DuckDB database and serves them
as a chunked source.Table.

Schema:

Every visibility table is a plain DuckDB table with one row per
(time, baseline, data description). Scalar columns are native DuckDB types;
the weight, visibility and flag cubes are little-endian BLOBs. A catalog
table records the cube extent of each visibility table:

	visreduce_catalog(name VARCHAR PRIMARY KEY, n_chan INTEGER, n_pol INTEGER, version VARCHAR)

The version is a fresh UUID on every write. Together with the database path
it identifies the table content for the result store.

Reading:

Iterate issues a single query ordered by row_id and cuts the result stream
into chunks in Go, so memory stays bounded by one chunk regardless of table
size. Only the BLOB columns a request names are selected. Channel slicing is
applied while the chunk is assembled.
*/
package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/source"
)

const catalogTable = "visreduce_catalog"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrNoTable is returned when the catalog has no entry for a table name.
var ErrNoTable = errors.New("visibility table not found")

// Options tunes the DuckDB connection.
type Options struct {
	Threads   int
	MaxMemory string
}

// Table is a source.Table backed by DuckDB.
type Table struct {
	conn    *sql.DB
	path    string
	name    string
	version string
	nchan   int
	npol    int
}

func openConn(path string, opts Options) (*sql.DB, error) {
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMem := opts.MaxMemory
	if maxMem == "" {
		maxMem = "1GB"
	}
	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMem)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

// Open opens the named visibility table in the database at path.
func Open(ctx context.Context, path, name string, opts Options) (*Table, error) {
	if !identRe.MatchString(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	conn, err := openConn(path, opts)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	t := &Table{conn: conn, path: abs, name: name}
	var version sql.NullString
	row := conn.QueryRowContext(ctx,
		"SELECT n_chan, n_pol, version FROM "+catalogTable+" WHERE name = ?", name)
	if err := row.Scan(&t.nchan, &t.npol, &version); err != nil {
		closeQuietly(conn)
		if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "does not exist") {
			return nil, fmt.Errorf("%w: %s", ErrNoTable, name)
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	t.version = version.String

	logging.Debug().Str("path", path).Str("table", name).
		Int("n_chan", t.nchan).Int("n_pol", t.npol).Msg("Opened visibility table")
	return t, nil
}

// Opener returns a source.Opener for the named table.
func Opener(path, name string, opts Options) source.Opener {
	return func(ctx context.Context) (source.Table, error) {
		return Open(ctx, path, name, opts)
	}
}

// Name implements source.Table.
func (t *Table) Name() string { return t.name }

// Version implements source.Versioned. Tables written before versions were
// recorded have none and are not cached.
func (t *Table) Version(context.Context) (string, error) {
	if t.version == "" {
		return "", fmt.Errorf("table %s has no recorded version", t.name)
	}
	return t.path + "#" + t.name + "@" + t.version, nil
}

// DataShape implements source.Table.
func (t *Table) DataShape() (int, int) { return t.nchan, t.npol }

// NumRows implements source.Table.
func (t *Table) NumRows(ctx context.Context) (int, error) {
	var n int
	if err := t.conn.QueryRowContext(ctx, "SELECT count(*) FROM "+t.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// Close implements source.Table.
func (t *Table) Close() error {
	return t.conn.Close()
}

// Iterate implements source.Table.
func (t *Table) Iterate(ctx context.Context, req source.Request, fn func(*source.Chunk) error) error {
	if err := source.CheckColumns(req.Columns); err != nil {
		return err
	}
	size := req.ChunkSize
	if size <= 0 {
		size = source.DefaultChunkSize
	}

	blobs := blobColumns(req)
	query := "SELECT antenna1, antenna2, time, data_desc_id, field_id, u, v, w, flag_row"
	for _, b := range blobs {
		query += ", " + b
	}
	query += " FROM " + t.name + " ORDER BY row_id"

	rows, err := t.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer closeWithLog(rows, "rows")

	ncell := t.nchan * t.npol
	buf := make([]source.Row, 0, size)
	index, start := 0, 0

	flush := func() error {
		c, err := source.BuildChunk(buf, index, start, t.nchan, t.npol, req)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		index++
		start += len(buf)
		buf = buf[:0]
		return nil
	}

	raw := make([][]byte, len(blobs))
	for rows.Next() {
		var r source.Row
		dest := []any{&r.Antenna1, &r.Antenna2, &r.Time, &r.DataDescID, &r.FieldID,
			&r.UVW[0], &r.UVW[1], &r.UVW[2], &r.FlagRow}
		for i := range raw {
			dest = append(dest, &raw[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan row %d: %w", start+len(buf), err)
		}
		for i, col := range blobs {
			if err := decodeInto(&r, col, raw[i], ncell, t.npol); err != nil {
				return fmt.Errorf("row %d: %w", start+len(buf), err)
			}
		}

		buf = append(buf, r)
		if len(buf) == size {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s: %w", t.name, err)
	}
	if len(buf) > 0 {
		return flush()
	}
	return nil
}

func blobColumns(req source.Request) []string {
	var out []string
	for _, c := range []struct{ col, sql string }{
		{source.ColWeight, "weight"},
		{source.ColData, "data"},
		{source.ColLagData, "lag_data"},
		{source.ColFlag, "flag"},
	} {
		if req.Has(c.col) {
			out = append(out, c.sql)
		}
	}
	return out
}

func decodeInto(r *source.Row, col string, b []byte, ncell, npol int) error {
	var err error
	switch col {
	case "weight":
		r.Weight, err = decodeFloat(b, npol)
	case "data":
		r.Data, err = decodeComplex(b, ncell)
	case "lag_data":
		r.LagData, err = decodeComplex(b, ncell)
	case "flag":
		r.Flag, err = decodeBool(b, ncell)
	}
	return err
}

func closeWithLog(c io.Closer, kind string) {
	if err := c.Close(); err != nil {
		logging.Warn().Str("type", kind).Err(err).Msg("Failed to close resource")
	}
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
