// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package source

import (
	"context"
	"errors"
	"fmt"
)

// Column names understood by every Table.
const (
	ColAntenna1   = "ANTENNA1"
	ColAntenna2   = "ANTENNA2"
	ColTime       = "TIME"
	ColDataDescID = "DATA_DESC_ID"
	ColFieldID    = "FIELD_ID"
	ColWeight     = "WEIGHT"
	ColUVW        = "UVW"
	ColFlagRow    = "FLAG_ROW"
	ColFlag       = "FLAG"
	ColData       = "DATA"
	ColLagData    = "LAG_DATA"
)

// DefaultChunkSize is the number of rows per chunk unless configured.
const DefaultChunkSize = 5000

// ErrUnsupportedColumn is returned for a column with no extraction rule.
var ErrUnsupportedColumn = errors.New("unsupported column")

// Slicer restricts the channel axis of a cube column to [Start, End).
type Slicer struct {
	Start int
	End   int
}

// Len returns the number of channels in the window.
func (s Slicer) Len() int { return s.End - s.Start }

// Request describes what to read from a Table.
type Request struct {
	Columns   []string
	Slicers   map[string]Slicer
	ChunkSize int
}

// Has reports whether the request includes col.
func (r Request) Has(col string) bool {
	for _, c := range r.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Table is a chunked, read-only view of visibility rows.
type Table interface {
	Name() string
	NumRows(ctx context.Context) (int, error)

	// DataShape returns the channel and polarization extent of the
	// visibility cube of every row.
	DataShape() (nchan, npol int)

	// Iterate calls fn once per chunk of at most req.ChunkSize rows, in
	// row order, and stops at the first error.
	Iterate(ctx context.Context, req Request, fn func(*Chunk) error) error

	Close() error
}

// Versioned is implemented by tables that can name their content. Two
// tables with the same version hold the same rows; a rewritten table gets a
// new one. Only versioned tables have their reductions cached.
type Versioned interface {
	Version(ctx context.Context) (string, error)
}

// Opener acquires a Table.
type Opener func(ctx context.Context) (Table, error)

// WithTable opens a table, runs fn and closes the table on every exit
// path, panics included. A close failure is joined onto fn's error.
func WithTable(ctx context.Context, open Opener, fn func(Table) error) (err error) {
	t, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	defer func() {
		if cerr := t.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close table %s: %w", t.Name(), cerr))
		}
	}()
	return fn(t)
}

// Reduce threads acc through fn for every chunk of t and returns the final
// value. Cancellation of ctx is checked between chunks.
func Reduce[A any](ctx context.Context, t Table, req Request, acc A, fn func(A, *Chunk) (A, error)) (A, error) {
	err := t.Iterate(ctx, req, func(c *Chunk) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := fn(acc, c)
		if err != nil {
			return fmt.Errorf("chunk %d (rows %d..%d): %w", c.Index, c.Start, c.Start+c.NumRows()-1, err)
		}
		acc = next
		return nil
	})
	return acc, err
}
