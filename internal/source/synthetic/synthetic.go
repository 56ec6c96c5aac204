// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package synthetic provides an in-memory visibility table and a generator
// for deterministic test observations.
package synthetic

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/source"
)

// ErrClosed is returned when a closed table is read.
var ErrClosed = errors.New("synthetic table is closed")

// Table is an in-memory source.Table.
type Table struct {
	name   string
	nchan  int
	npol   int
	rows   []source.Row
	closed atomic.Bool
}

// New wraps rows in a table. Every row must carry nchan*npol cells.
func New(name string, nchan, npol int, rows []source.Row) *Table {
	return &Table{name: name, nchan: nchan, npol: npol, rows: rows}
}

// Name implements source.Table.
func (t *Table) Name() string { return t.name }

// NumRows implements source.Table.
func (t *Table) NumRows(context.Context) (int, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}
	return len(t.rows), nil
}

// DataShape implements source.Table.
func (t *Table) DataShape() (int, int) { return t.nchan, t.npol }

// Rows returns the backing rows.
func (t *Table) Rows() []source.Row { return t.rows }

// Closed reports whether Close has been called.
func (t *Table) Closed() bool { return t.closed.Load() }

// Close implements source.Table.
func (t *Table) Close() error {
	t.closed.Store(true)
	return nil
}

// Iterate implements source.Table.
func (t *Table) Iterate(ctx context.Context, req source.Request, fn func(*source.Chunk) error) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := source.CheckColumns(req.Columns); err != nil {
		return err
	}
	size := req.ChunkSize
	if size <= 0 {
		size = source.DefaultChunkSize
	}

	for i, start := 0, 0; start < len(t.rows); i, start = i+1, start+size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, len(t.rows))
		c, err := source.BuildChunk(t.rows[start:end], i, start, t.nchan, t.npol, req)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// Version implements source.Versioned with a digest of the table name,
// shape and every row, so equal content always gets the same version.
func (t *Table) Version(context.Context) (string, error) {
	h := sha256.New()
	var buf []byte
	u64 := func(v uint64) { buf = binary.LittleEndian.AppendUint64(buf, v) }
	f32 := func(v float32) { buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v)) }
	flag := func(b bool) {
		if b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}

	buf = append(buf, t.name...)
	buf = append(buf, 0)
	u64(uint64(t.nchan))
	u64(uint64(t.npol))
	u64(uint64(len(t.rows)))
	for _, r := range t.rows {
		u64(uint64(r.Antenna1))
		u64(uint64(r.Antenna2))
		u64(math.Float64bits(r.Time))
		u64(uint64(r.DataDescID))
		u64(uint64(r.FieldID))
		flag(r.FlagRow)
		for _, c := range r.UVW {
			u64(math.Float64bits(c))
		}
		u64(uint64(len(r.Weight)))
		for _, w := range r.Weight {
			f32(w)
		}
		for _, col := range [][]complex64{r.Data, r.LagData} {
			u64(uint64(len(col)))
			for _, v := range col {
				f32(real(v))
				f32(imag(v))
			}
		}
		u64(uint64(len(r.Flag)))
		for _, f := range r.Flag {
			flag(f)
		}
		h.Write(buf)
		buf = buf[:0]
	}
	h.Write(buf)
	return "synthetic:" + hex.EncodeToString(h.Sum(nil)), nil
}

// Opener returns a source.Opener that hands out t.
func (t *Table) Opener() source.Opener {
	return func(context.Context) (source.Table, error) {
		if t.closed.Load() {
			return nil, ErrClosed
		}
		return t, nil
	}
}

// Observation describes a generated data set.
type Observation struct {
	Name       string
	Antennas   []string
	Fields     []string
	Timestamps int
	StartTime  float64
	Interval   float64
	// Subbands of the single frequency group; every subband gets its own
	// data description.
	Subbands []float64
	Channels int
	ChanStep float64
	Pols     []string

	// Vis computes the visibility of a sample. Nil yields a baseline and
	// channel dependent phasor.
	Vis func(a1, a2, ch, pol int, t float64) complex64
	// Weight computes the weight of a (row, pol). Nil means 1.
	Weight func(a1, a2, pol int, t float64) float32
	// Flag computes the flag of a sample. Nil means unflagged.
	Flag func(a1, a2, ch, pol int, t float64) bool
}

// Generate builds a table with one row per (time, data description,
// baseline) and the mapping metadata that describes it.
func Generate(obs Observation) (*Table, mapping.Metadata, error) {
	if len(obs.Antennas) < 2 || obs.Timestamps <= 0 || obs.Channels <= 0 || len(obs.Pols) == 0 || len(obs.Subbands) == 0 {
		return nil, mapping.Metadata{}, fmt.Errorf("observation needs 2+ antennas and positive times, channels, pols and subbands")
	}
	if obs.Interval <= 0 {
		obs.Interval = 1
	}
	if len(obs.Fields) == 0 {
		obs.Fields = []string{"FIELD0"}
	}
	if obs.Vis == nil {
		obs.Vis = defaultVis
	}

	md := mapping.Metadata{
		Antennas:        obs.Antennas,
		Fields:          obs.Fields,
		Polarizations:   []mapping.PolSetup{{ID: 0, Products: obs.Pols}},
		IntegrationTime: obs.Interval,
		TimeRange: [2]float64{
			obs.StartTime,
			obs.StartTime + float64(obs.Timestamps-1)*obs.Interval,
		},
	}
	group := mapping.FreqGroup{ID: 0, Name: "FQ0"}
	for sb, f0 := range obs.Subbands {
		freqs := make([]float64, obs.Channels)
		for ch := range freqs {
			freqs[ch] = f0 + float64(ch)*obs.ChanStep
		}
		group.Subbands = append(group.Subbands, mapping.Subband{Frequencies: freqs})
		md.DataDescriptions = append(md.DataDescriptions, mapping.DataDescription{
			ID:      sb,
			DDEntry: mapping.DDEntry{FreqGroup: 0, Subband: sb, PolID: 0},
		})
	}
	md.FreqGroups = []mapping.FreqGroup{group}

	npol := len(obs.Pols)
	var rows []source.Row
	for ti := 0; ti < obs.Timestamps; ti++ {
		tm := obs.StartTime + float64(ti)*obs.Interval
		for dd := range obs.Subbands {
			for a1 := 0; a1 < len(obs.Antennas); a1++ {
				for a2 := a1 + 1; a2 < len(obs.Antennas); a2++ {
					r := source.Row{
						Antenna1:   a1,
						Antenna2:   a2,
						Time:       tm,
						DataDescID: dd,
						FieldID:    0,
						UVW:        uvw(a1, a2, tm),
						Weight:     make([]float32, npol),
						Data:       make([]complex64, obs.Channels*npol),
						LagData:    make([]complex64, obs.Channels*npol),
						Flag:       make([]bool, obs.Channels*npol),
					}
					for p := 0; p < npol; p++ {
						r.Weight[p] = 1
						if obs.Weight != nil {
							r.Weight[p] = obs.Weight(a1, a2, p, tm)
						}
						for ch := 0; ch < obs.Channels; ch++ {
							i := ch*npol + p
							r.Data[i] = obs.Vis(a1, a2, ch, p, tm)
							r.LagData[i] = complex(real(r.Data[i]), -imag(r.Data[i]))
							if obs.Flag != nil {
								r.Flag[i] = obs.Flag(a1, a2, ch, p, tm)
							}
						}
					}
					rows = append(rows, r)
				}
			}
		}
	}
	return New(obs.Name, obs.Channels, npol, rows), md, nil
}

func defaultVis(a1, a2, ch, pol int, t float64) complex64 {
	amp := float64(a1+a2+1) * (1 + 0.1*float64(pol))
	ph := 0.1*float64(ch) + 0.01*t
	return complex64(complex(amp*math.Cos(ph), amp*math.Sin(ph)))
}

// uvw places antennas on a circle and rotates the baseline with time.
func uvw(a1, a2 int, t float64) [3]float64 {
	x := func(a int) (float64, float64) {
		ang := float64(a) * 0.7
		return 100 * float64(a+1) * math.Cos(ang), 100 * float64(a+1) * math.Sin(ang)
	}
	x1, y1 := x(a1)
	x2, y2 := x(a2)
	dx, dy := x2-x1, y2-y1
	h := 2 * math.Pi * t / 86164.0905
	return [3]float64{
		dx*math.Cos(h) - dy*math.Sin(h),
		dx*math.Sin(h) + dy*math.Cos(h),
		0,
	}
}
