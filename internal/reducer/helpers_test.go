// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/visreduce/internal/dataset"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/source"
	"github.com/tomtom215/visreduce/internal/source/synthetic"
)

const tolerance = 1e-9

type fixture struct {
	rows  []source.Row
	nchan int
	npol  int
	m     *mapping.Static
}

// newFixture generates an observation and keeps the rows accepted by keep.
func newFixture(t *testing.T, obs synthetic.Observation, keep func(source.Row) bool) *fixture {
	t.Helper()

	tbl, md, err := synthetic.Generate(obs)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	m, err := mapping.New(md)
	if err != nil {
		t.Fatalf("mapping.New: %v", err)
	}
	nchan, npol := tbl.DataShape()
	f := &fixture{nchan: nchan, npol: npol, m: m}
	for _, r := range tbl.Rows() {
		if keep == nil || keep(r) {
			f.rows = append(f.rows, r)
		}
	}
	return f
}

// sample is one single-polarization row on baseline (0, a2).
type sample struct {
	t   float64
	a2  int
	w   float32
	vis []complex64
}

// manualFixture builds a single-polarization table from explicit samples.
// The integration time is 0.1 s.
func manualFixture(t *testing.T, nchan int, samples ...sample) *fixture {
	t.Helper()
	return manualFixtureWith(t, 0.1, nchan, samples...)
}

func manualFixtureWith(t *testing.T, integration float64, nchan int, samples ...sample) *fixture {
	t.Helper()

	freqs := make([]float64, nchan)
	for i := range freqs {
		freqs[i] = 1e9 + float64(i)*1e6
	}
	md := mapping.Metadata{
		Antennas:         []string{"A", "B", "C"},
		Fields:           []string{"SRC"},
		FreqGroups:       []mapping.FreqGroup{{ID: 0, Name: "FQ0", Subbands: []mapping.Subband{{Frequencies: freqs}}}},
		Polarizations:    []mapping.PolSetup{{ID: 0, Products: []string{"XX"}}},
		DataDescriptions: []mapping.DataDescription{{ID: 0}},
		IntegrationTime:  integration,
		TimeRange:        [2]float64{samples[0].t, samples[len(samples)-1].t},
	}
	m, err := mapping.New(md)
	if err != nil {
		t.Fatalf("mapping.New: %v", err)
	}

	f := &fixture{nchan: nchan, npol: 1, m: m}
	for _, s := range samples {
		if len(s.vis) != nchan {
			t.Fatalf("sample at %g has %d channels, want %d", s.t, len(s.vis), nchan)
		}
		w := s.w
		if w == 0 {
			w = 1
		}
		a2 := s.a2
		if a2 == 0 {
			a2 = 1
		}
		f.rows = append(f.rows, source.Row{
			Antenna1: 0,
			Antenna2: a2,
			Time:     s.t,
			UVW:      [3]float64{3, 4, 0},
			Weight:   []float32{w},
			Data:     s.vis,
			LagData:  s.vis,
			Flag:     make([]bool, nchan),
		})
	}
	return f
}

func (f *fixture) table() *synthetic.Table {
	return synthetic.New("test", f.nchan, f.npol, f.rows)
}

func (f *fixture) run(t *testing.T, plot string, sel Selection) (*Result, *synthetic.Table, error) {
	t.Helper()
	tbl := f.table()
	res, err := Run(context.Background(), tbl.Opener(), f.m, plot, sel)
	return res, tbl, err
}

func (f *fixture) mustRun(t *testing.T, plot string, sel Selection) *Result {
	t.Helper()
	res, tbl, err := f.run(t, plot, sel)
	if err != nil {
		t.Fatalf("Run(%s): %v", plot, err)
	}
	if !tbl.Closed() {
		t.Error("table left open")
	}
	return res
}

// byName indexes a result by label string.
func byName(res *Result) map[string]*dataset.Dataset[float64] {
	out := make(map[string]*dataset.Dataset[float64], len(res.Datasets))
	for l, ds := range res.Datasets {
		out[l.String()] = ds
	}
	return out
}

func mustGet(t *testing.T, res *Result, name string) *dataset.Dataset[float64] {
	t.Helper()
	ds, ok := byName(res)[name]
	if !ok {
		var names []string
		for n := range byName(res) {
			names = append(names, n)
		}
		t.Fatalf("no dataset %q; have %v", name, names)
	}
	return ds
}

func assertFloats(t *testing.T, what string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %v, got %v", what, want, got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tolerance {
			t.Fatalf("%s: expected %v, got %v", what, want, got)
		}
	}
}

func ptr[T any](v T) *T { return &v }
