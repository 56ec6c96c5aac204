// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package engine

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/marker"
	"github.com/tomtom215/visreduce/internal/models"
	"github.com/tomtom215/visreduce/internal/reducer"
	"github.com/tomtom215/visreduce/internal/resultstore"
	"github.com/tomtom215/visreduce/internal/source"
	"github.com/tomtom215/visreduce/internal/source/synthetic"
)

// countingOpener opens a fresh synthetic table on every call and counts
// opens, reads and closes.
type countingOpener struct {
	mu     sync.Mutex
	rows   []source.Row
	nchan  int
	npol   int
	opens  int
	reads  int
	closes int
}

func (c *countingOpener) open(context.Context) (source.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opens++
	return &countingTable{Table: synthetic.New("obs", c.nchan, c.npol, c.rows), co: c}, nil
}

func (c *countingOpener) counts() (opens, reads, closes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens, c.reads, c.closes
}

type countingTable struct {
	*synthetic.Table
	co *countingOpener
}

func (t *countingTable) Iterate(ctx context.Context, req source.Request, fn func(*source.Chunk) error) error {
	t.co.mu.Lock()
	t.co.reads++
	t.co.mu.Unlock()
	return t.Table.Iterate(ctx, req, fn)
}

func (t *countingTable) Close() error {
	t.co.mu.Lock()
	t.co.closes++
	t.co.mu.Unlock()
	return t.Table.Close()
}

func newTestEngine(t *testing.T, store *resultstore.Store) (*Engine, *countingOpener) {
	t.Helper()
	return newEngineWith(t, store, func(a1, a2, _, _ int, tm float64) complex64 {
		if a1 == 0 && a2 == 2 && tm == 2 {
			return 50
		}
		return 1
	})
}

// newEngineWith builds an engine named "obs" over a 3 antenna, 4 timestamp,
// 4 channel observation with the given visibilities.
func newEngineWith(t *testing.T, store *resultstore.Store, vis func(a1, a2, ch, pol int, t float64) complex64) (*Engine, *countingOpener) {
	t.Helper()

	tbl, md, err := synthetic.Generate(synthetic.Observation{
		Name:       "obs",
		Antennas:   []string{"A", "B", "C"},
		Timestamps: 4,
		Interval:   1,
		Subbands:   []float64{1e9},
		Channels:   4,
		ChanStep:   1e6,
		Pols:       []string{"XX"},
		Vis:        vis,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	m, err := mapping.New(md)
	if err != nil {
		t.Fatalf("mapping.New: %v", err)
	}
	nchan, npol := tbl.DataShape()
	co := &countingOpener{rows: tbl.Rows(), nchan: nchan, npol: npol}
	return New("obs", co.open, m, store), co
}

func openTestStore(t *testing.T) *resultstore.Store {
	t.Helper()
	store, err := resultstore.Open(resultstore.Config{Path: filepath.Join(t.TempDir(), "results")})
	if err != nil {
		t.Fatalf("resultstore.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProduce(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, nil)
	r, err := e.Produce(context.Background(), models.ReduceRequest{
		Plot:      "amptime",
		Selection: reducer.Selection{Channels: []int{1}},
		Mark:      "y > avg + sd",
	})
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if len(r.Series) != 3 || r.Rows != 12 || r.RunID == "" || r.Fingerprint == "" {
		t.Fatalf("unexpected reduction %+v", r)
	}
	if !slices.IsSortedFunc(r.Series, func(a, b models.Series) int {
		if a.Label < b.Label {
			return -1
		}
		if a.Label > b.Label {
			return 1
		}
		return 0
	}) {
		t.Error("series must be sorted by label")
	}

	for _, s := range r.Series {
		if s.Fields["BL"] == "AC" {
			if !slices.Equal(s.Marked, []int{2}) {
				t.Errorf("expected the outlier at index 2 marked, got %v", s.Marked)
			}
			continue
		}
		if len(s.Marked) != 0 {
			t.Errorf("%s: unexpected marks %v", s.Label, s.Marked)
		}
	}
}

func TestProduce_ResultStore(t *testing.T) {
	t.Parallel()

	e, co := newTestEngine(t, openTestStore(t))
	req := models.ReduceRequest{Plot: "ampchan"}

	first, err := e.Produce(context.Background(), req)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	second, err := e.Produce(context.Background(), req)
	if err != nil {
		t.Fatalf("Produce (cached): %v", err)
	}

	opens, reads, closes := co.counts()
	if reads != 1 {
		t.Errorf("expected one table read, got %d", reads)
	}
	if opens != 2 || closes != 2 {
		t.Errorf("every request opens and closes the table once, opens %d closes %d", opens, closes)
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached flags: first %v second %v", first.Cached, second.Cached)
	}
	if second.Fingerprint != first.Fingerprint || len(second.Series) != len(first.Series) {
		t.Error("cached reduction differs from the original")
	}

	if _, err := e.Produce(context.Background(), models.ReduceRequest{Plot: "phachan"}); err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if _, reads, _ := co.counts(); reads != 2 {
		t.Errorf("a different plot must not hit the cache, reads = %d", reads)
	}
}

func TestProduce_SharedStoreKeepsTablesApart(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	constant := func(amp complex64) func(int, int, int, int, float64) complex64 {
		return func(int, int, int, int, float64) complex64 { return amp }
	}
	ones, _ := newEngineWith(t, store, constant(1))
	sevens, co := newEngineWith(t, store, constant(7))
	req := models.ReduceRequest{Plot: "amptime", Selection: reducer.Selection{Channels: []int{0}}}

	if _, err := ones.Produce(context.Background(), req); err != nil {
		t.Fatalf("Produce: %v", err)
	}
	r, err := sevens.Produce(context.Background(), req)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if r.Cached {
		t.Fatal("a table with different content under the same name was served from the store")
	}
	if _, reads, _ := co.counts(); reads != 1 {
		t.Errorf("expected the second table to be read, reads = %d", reads)
	}
	for _, s := range r.Series {
		for i, y := range s.Y {
			if math.Abs(y-7) > 1e-6 {
				t.Fatalf("%s: y[%d] = %g, expected 7", s.Label, i, y)
			}
		}
	}
}

func TestProduce_NonFiniteSamples(t *testing.T) {
	t.Parallel()

	nan := complex(float32(math.NaN()), 0)
	e, _ := newEngineWith(t, nil, func(int, int, int, int, float64) complex64 { return nan })

	for _, sel := range []reducer.Selection{{}, {AverageChannel: average.Scalar}} {
		r, err := e.Produce(context.Background(), models.ReduceRequest{
			Plot:      "amptime",
			Selection: sel,
			Mark:      "y > avg",
		})
		if err != nil {
			t.Fatalf("Produce: %v", err)
		}
		if len(r.Series) == 0 {
			t.Fatal("expected series")
		}
		for _, s := range r.Series {
			for i := range s.Y {
				if !s.Mask[i] || s.Y[i] != 0 {
					t.Fatalf("%s: point %d = %g masked %v, expected a masked zero", s.Label, i, s.Y[i], s.Mask[i])
				}
			}
			if len(s.Marked) != 0 {
				t.Errorf("%s: masked points must not be marked, got %v", s.Label, s.Marked)
			}
		}
		if _, err := json.Marshal(r); err != nil {
			t.Fatalf("reduction of NaN samples must encode: %v", err)
		}
	}
}

func TestProduce_Errors(t *testing.T) {
	t.Parallel()

	e, co := newTestEngine(t, openTestStore(t))

	_, err := e.Produce(context.Background(), models.ReduceRequest{Plot: "amptime", Mark: "len(y) > 1"})
	if !errors.Is(err, reducer.ErrConfiguration) || !errors.Is(err, marker.ErrExpression) {
		t.Errorf("expected a configuration error for a bad mark, got %v", err)
	}

	if _, err := e.Produce(context.Background(), models.ReduceRequest{Plot: "nosuch"}); !errors.Is(err, reducer.ErrUnknownPlot) {
		t.Errorf("expected ErrUnknownPlot, got %v", err)
	}
	if opens, _, _ := co.counts(); opens != 0 {
		t.Error("invalid requests must be rejected before opening the table")
	}

	// a selection error surfaces after the version read; the table is
	// still closed
	_, err = e.Produce(context.Background(), models.ReduceRequest{
		Plot:      "amptime",
		Selection: reducer.Selection{Channels: []int{99}},
	})
	if !errors.Is(err, reducer.ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
	if opens, _, closes := co.counts(); opens != closes {
		t.Errorf("table left open: opens %d closes %d", opens, closes)
	}
}

func TestPlots(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, nil)
	plots := e.Plots()
	if len(plots) != len(reducer.Kinds()) {
		t.Fatalf("expected %d plots, got %d", len(reducer.Kinds()), len(plots))
	}
	for _, p := range plots {
		if p.Description == "" {
			t.Errorf("%s has no description", p.Name)
		}
	}
}
