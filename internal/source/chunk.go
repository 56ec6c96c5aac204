// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package source

import (
	"fmt"

	"github.com/tomtom215/visreduce/internal/cube"
)

// Chunk is one block of rows in columnar form. Only requested columns are
// populated. Cube columns come back squeezed: any axis of extent 1 is
// dropped from Dims, the way array-oriented table readers deliver them.
type Chunk struct {
	Index int
	Start int

	Antenna1   []int
	Antenna2   []int
	Time       []float64
	DataDescID []int
	FieldID    []int
	FlagRow    []bool
	UVW        [][3]float64

	// Weight is (rows, pols) before squeezing.
	Weight cube.Raw[float32]
	// Data holds the requested visibility column, (rows, chans, pols).
	Data cube.Raw[complex64]
	// Flag is (rows, chans, pols) before squeezing.
	Flag cube.Raw[bool]
}

// NumRows returns the number of rows in the chunk.
func (c *Chunk) NumRows() int {
	return len(c.Time)
}

// Row is one table row in the form sources decode it into. Cube cells are
// stored channel-major: index = ch*npol + pol.
type Row struct {
	Antenna1   int
	Antenna2   int
	Time       float64
	DataDescID int
	FieldID    int
	FlagRow    bool
	UVW        [3]float64
	Weight     []float32
	Data       []complex64
	LagData    []complex64
	Flag       []bool
}

// BuildChunk assembles the requested columns of rows into a Chunk.
func BuildChunk(rows []Row, index, start, nchan, npol int, req Request) (*Chunk, error) {
	c := &Chunk{Index: index, Start: start}
	n := len(rows)

	for _, col := range req.Columns {
		switch col {
		case ColAntenna1:
			c.Antenna1 = gather(rows, func(r *Row) int { return r.Antenna1 })
		case ColAntenna2:
			c.Antenna2 = gather(rows, func(r *Row) int { return r.Antenna2 })
		case ColTime:
			// always filled below
		case ColDataDescID:
			c.DataDescID = gather(rows, func(r *Row) int { return r.DataDescID })
		case ColFieldID:
			c.FieldID = gather(rows, func(r *Row) int { return r.FieldID })
		case ColFlagRow:
			c.FlagRow = gather(rows, func(r *Row) bool { return r.FlagRow })
		case ColUVW:
			c.UVW = gather(rows, func(r *Row) [3]float64 { return r.UVW })
		case ColWeight:
			w := make([]float32, 0, n*npol)
			for i := range rows {
				if len(rows[i].Weight) != npol {
					return nil, fmt.Errorf("row %d: %d weights for %d polarizations", start+i, len(rows[i].Weight), npol)
				}
				w = append(w, rows[i].Weight...)
			}
			c.Weight = cube.Raw[float32]{Dims: squeeze(n, npol), Values: w}
		case ColData, ColLagData, ColFlag:
			win := windowFor(req, col, nchan)
			if win.Start < 0 || win.End > nchan || win.Len() <= 0 {
				return nil, fmt.Errorf("slicer %v out of range for %d channels", win, nchan)
			}
			dims := squeeze(n, win.Len(), npol)
			var err error
			switch col {
			case ColData:
				c.Data.Dims = dims
				c.Data.Values, err = sliceCells(rows, start, func(r *Row) []complex64 { return r.Data }, win, nchan, npol)
			case ColLagData:
				c.Data.Dims = dims
				c.Data.Values, err = sliceCells(rows, start, func(r *Row) []complex64 { return r.LagData }, win, nchan, npol)
			case ColFlag:
				c.Flag.Dims = dims
				c.Flag.Values, err = sliceCells(rows, start, func(r *Row) []bool { return r.Flag }, win, nchan, npol)
			}
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedColumn, col)
		}
	}
	c.Time = gather(rows, func(r *Row) float64 { return r.Time })
	return c, nil
}

// CheckColumns returns ErrUnsupportedColumn for the first unknown column.
func CheckColumns(cols []string) error {
	for _, col := range cols {
		switch col {
		case ColAntenna1, ColAntenna2, ColTime, ColDataDescID, ColFieldID,
			ColWeight, ColUVW, ColFlagRow, ColFlag, ColData, ColLagData:
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedColumn, col)
		}
	}
	return nil
}

func windowFor(req Request, col string, nchan int) Slicer {
	if s, ok := req.Slicers[col]; ok {
		return s
	}
	return Slicer{Start: 0, End: nchan}
}

func gather[T any](rows []Row, get func(*Row) T) []T {
	out := make([]T, len(rows))
	for i := range rows {
		out[i] = get(&rows[i])
	}
	return out
}

func sliceCells[T any](rows []Row, start int, get func(*Row) []T, win Slicer, nchan, npol int) ([]T, error) {
	out := make([]T, 0, len(rows)*win.Len()*npol)
	for i := range rows {
		cells := get(&rows[i])
		if len(cells) != nchan*npol {
			return nil, fmt.Errorf("row %d: %d cells for %d x %d", start+i, len(cells), nchan, npol)
		}
		out = append(out, cells[win.Start*npol:win.End*npol]...)
	}
	return out, nil
}

func squeeze(extents ...int) []int {
	dims := make([]int, 0, len(extents))
	for _, e := range extents {
		if e != 1 {
			dims = append(dims, e)
		}
	}
	return dims
}
