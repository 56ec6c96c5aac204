// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/metrics"
	"github.com/tomtom215/visreduce/internal/source"
	"github.com/tomtom215/visreduce/internal/source/synthetic"
)

// channelRamp gives every channel the real value ch+1.
func channelRamp(_, _, ch, _ int, _ float64) complex64 {
	return complex(float32(ch+1), 0)
}

func twoBaselines(r source.Row) bool { return r.Antenna1 == 0 }

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t, synthetic.Observation{
		Name:       "e2e",
		Antennas:   []string{"A", "B", "C"},
		Timestamps: 3,
		Interval:   1,
		Subbands:   []float64{1e9},
		Channels:   4,
		ChanStep:   1e6,
		Pols:       []string{"XX"},
		Vis:        channelRamp,
	}, twoBaselines)

	res := f.mustRun(t, "amptime", Selection{})

	if len(res.Datasets) != 8 {
		t.Fatalf("expected 2 baselines x 4 channels x 1 pol = 8 datasets, got %d", len(res.Datasets))
	}
	for l, ds := range res.Datasets {
		if ds.Len() != 3 {
			t.Errorf("%s: expected 3 points, got %d", l, ds.Len())
		}
	}
	if res.Rows != 6 || res.Chunks != 1 || res.Rejected != 0 {
		t.Errorf("unexpected run summary %+v", res)
	}

	ds := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH=2")
	assertFloats(t, "x", ds.X(), []float64{0, 1, 2})
	assertFloats(t, "y", ds.Y(), []float64{3, 3, 3})
	mustGet(t, res, "TYPE=amplitude BL=AC FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH=0")
}

func TestRun_FreshAccumulatorPerRun(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1, sample{t: 0, vis: []complex64{1}}, sample{t: 1, vis: []complex64{2}})
	first := f.mustRun(t, "amptime", Selection{})
	second := f.mustRun(t, "amptime", Selection{})

	for name, ds := range byName(second) {
		if ds.Len() != byName(first)[name].Len() {
			t.Errorf("%s: second run has %d points, first %d", name, ds.Len(), byName(first)[name].Len())
		}
	}
}

func TestRun_ChunkSizeIndependence(t *testing.T) {
	t.Parallel()

	f := newFixture(t, synthetic.Observation{
		Name:       "chunks",
		Antennas:   []string{"A", "B", "C"},
		Timestamps: 6,
		Interval:   1,
		Subbands:   []float64{1e9, 2e9},
		Channels:   4,
		ChanStep:   1e6,
		Pols:       []string{"XX", "YY"},
		Flag: func(_, a2, ch, _ int, tm float64) bool {
			return a2 == 2 && ch == 1 && tm == 3
		},
	}, nil)

	cases := []struct {
		plot string
		sel  Selection
	}{
		{"anptime", Selection{ReadFlags: true}},
		{"amptime", Selection{AverageChannel: average.Scalar, Solint: ptr(2.0)}},
		{"phatime", Selection{AverageChannel: average.VectorNorm}},
		{"rnichan", Selection{AverageTime: average.Vector, Solint: ptr(2.0), ReadFlags: true}},
		{"ampfreq", Selection{AverageTime: average.Scalar}},
		{"ampuv", Selection{AverageChannel: average.Vector}},
		{"wt", Selection{}},
	}

	for _, tc := range cases {
		t.Run(tc.plot, func(t *testing.T) {
			t.Parallel()

			tc.sel.ChunkSize = len(f.rows)
			want := byName(f.mustRun(t, tc.plot, tc.sel))

			for _, size := range []int{1, 4, 7} {
				sel := tc.sel
				sel.ChunkSize = size
				got := byName(f.mustRun(t, tc.plot, sel))
				if len(got) != len(want) {
					t.Fatalf("chunk size %d: %d datasets, want %d", size, len(got), len(want))
				}
				for name, w := range want {
					g, ok := got[name]
					if !ok {
						t.Fatalf("chunk size %d: missing %s", size, name)
					}
					assertFloats(t, name+" x", g.X(), w.X())
					assertFloats(t, name+" y", g.Y(), w.Y())
					if !slices.Equal(g.Mask(), w.Mask()) {
						t.Errorf("chunk size %d: %s mask %v, want %v", size, name, g.Mask(), w.Mask())
					}
				}
			}
		})
	}
}

func TestRun_TimePlotSolint(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1,
		sample{t: 0.0, vis: []complex64{2}},
		sample{t: 0.4, vis: []complex64{4}},
		sample{t: 0.6, vis: []complex64{6}},
		sample{t: 1.1, vis: []complex64{8}},
	)
	res := f.mustRun(t, "amptime", Selection{Solint: ptr(0.5)})

	ds := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX CH=0")
	assertFloats(t, "x", ds.X(), []float64{0.25, 0.75, 1.25})
	assertFloats(t, "y", ds.Y(), []float64{3, 6, 8})
}

func TestRun_ChannelPlotSolint(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 2,
		sample{t: 0.0, vis: []complex64{2, 1}},
		sample{t: 0.4, vis: []complex64{4, 1}},
		sample{t: 0.6, vis: []complex64{6, 1}},
	)
	// solint without an averaging method defaults to scalar
	res := f.mustRun(t, "ampchan", Selection{Solint: ptr(0.5)})

	if len(res.Datasets) != 2 {
		t.Fatalf("expected 2 time buckets, got %d", len(res.Datasets))
	}
	ds := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX TIME=0/00:00:00.25")
	assertFloats(t, "x", ds.X(), []float64{0, 1})
	assertFloats(t, "y", ds.Y(), []float64{3, 1})
	if !ds.Averaged() || ds.Count() != 2 {
		t.Errorf("expected an average of 2 contributions, got count %d", ds.Count())
	}
}

func TestRun_SubCentisecondTimestamps(t *testing.T) {
	t.Parallel()

	f := manualFixtureWith(t, 0.001, 2,
		sample{t: 10.000, vis: []complex64{1, 2}},
		sample{t: 10.004, vis: []complex64{3, 4}},
	)
	res := f.mustRun(t, "ampchan", Selection{})

	if len(res.Datasets) != 2 {
		t.Fatalf("expected one series per timestamp, got %d", len(res.Datasets))
	}
	first := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX TIME=0/00:00:10.000")
	second := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX TIME=0/00:00:10.004")
	assertFloats(t, "first", first.Y(), []float64{1, 2})
	assertFloats(t, "second", second.Y(), []float64{3, 4})
}

func TestRun_NonFiniteSamplesAreMasked(t *testing.T) {
	t.Parallel()

	nan := complex(float32(math.NaN()), 0)
	inf := complex(float32(math.Inf(1)), 0)
	f := manualFixture(t, 3,
		sample{t: 0, vis: []complex64{nan, 4, inf}},
		sample{t: 1, vis: []complex64{2, 2, 2}},
	)

	avg := f.mustRun(t, "amptime", Selection{AverageChannel: average.Scalar})
	ds := mustGet(t, avg, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX CH=*")
	assertFloats(t, "channel average", ds.Y(), []float64{4, 2})
	if slices.Contains(ds.Mask(), true) {
		t.Errorf("averages with a finite channel stay unmasked, got %v", ds.Mask())
	}

	per := f.mustRun(t, "amptime", Selection{})
	if m := mustGet(t, per, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX CH=0").Mask(); !slices.Equal(m, []bool{true, false}) {
		t.Errorf("NaN sample must be masked, got %v", m)
	}
	if m := mustGet(t, per, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX CH=2").Mask(); !slices.Equal(m, []bool{true, false}) {
		t.Errorf("infinite sample must be masked, got %v", m)
	}
}

func TestRun_TimeRangesLeaveUncoveredRowsAlone(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1,
		sample{t: 0, vis: []complex64{2}},
		sample{t: 1, vis: []complex64{4}},
		sample{t: 5, vis: []complex64{9}},
	)
	res := f.mustRun(t, "ampchan", Selection{
		AverageTime: average.Scalar,
		TimeRanges:  []average.Range{{Start: 0, End: 2}},
	})

	assertFloats(t, "covered", mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX TIME=0/00:00:01.00").Y(), []float64{3})
	assertFloats(t, "uncovered", mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX TIME=0/00:00:05.00").Y(), []float64{9})
}

func TestRun_WeightThreshold(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1,
		sample{t: 0, w: 0.3, vis: []complex64{1}},
		sample{t: 1, w: 0.7, vis: []complex64{2}},
	)
	before := testutil.ToFloat64(metrics.ReduceWeightRejections.WithLabelValues("amptime"))

	res := f.mustRun(t, "amptime", Selection{WeightThreshold: ptr(0.5)})

	ds := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX CH=0")
	assertFloats(t, "x", ds.X(), []float64{1})
	assertFloats(t, "y", ds.Y(), []float64{2})
	if res.Rejected != 1 {
		t.Errorf("expected 1 rejection, got %d", res.Rejected)
	}
	if got := testutil.ToFloat64(metrics.ReduceWeightRejections.WithLabelValues("amptime")) - before; got < 1 {
		t.Errorf("expected rejection metric to grow, delta %v", got)
	}

	wt := f.mustRun(t, "wt", Selection{WeightThreshold: ptr(0.5)})
	ds = mustGet(t, wt, "TYPE=weight BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX")
	assertFloats(t, "weights", ds.Y(), []float64{float64(float32(0.7))})
}

func TestRun_ChannelAveragingPolicies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy average.Policy
		vis    []complex64
		want   float64
	}{
		{"vector cancels", average.Vector, []complex64{1, -1}, 0},
		{"scalar keeps amplitude", average.Scalar, []complex64{1, -1}, 1},
		{"vector keeps amplitude bias", average.Vector, []complex64{2, -1}, 0.5},
		{"normalized vector", average.VectorNorm, []complex64{2, -1}, 0},
		{"scalar of unequal", average.Scalar, []complex64{2, -1}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := manualFixture(t, 2, sample{t: 0, vis: tt.vis})
			res := f.mustRun(t, "amptime", Selection{AverageChannel: tt.policy})
			if len(res.Datasets) != 1 {
				t.Fatalf("expected one averaged dataset, got %d", len(res.Datasets))
			}
			ds := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX CH=*")
			assertFloats(t, "y", ds.Y(), []float64{tt.want})
		})
	}
}

func TestRun_TimeAveragingPolicies(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1,
		sample{t: 0, vis: []complex64{1}},
		sample{t: 1, vis: []complex64{-1}},
	)
	name := "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX TIME=0/00:00:00.50"

	vector := f.mustRun(t, "ampchan", Selection{AverageTime: average.Vector})
	scalar := f.mustRun(t, "ampchan", Selection{AverageTime: average.Scalar})

	v := mustGet(t, vector, name).Y()
	s := mustGet(t, scalar, name).Y()
	assertFloats(t, "vector", v, []float64{0})
	assertFloats(t, "scalar", s, []float64{1})
	if v[0] == s[0] {
		t.Error("vector and scalar time averaging must differ")
	}

	anp := f.mustRun(t, "anpchan", Selection{AverageTime: average.VectorNorm})
	if len(anp.Datasets) != 2 {
		t.Errorf("expected amplitude and phase datasets, got %d", len(anp.Datasets))
	}
	for l := range anp.Datasets {
		if l.Fields()["TYPE"] == "raw" {
			t.Error("raw datasets must not reach the result")
		}
	}
}

func TestRun_ChannelSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t, synthetic.Observation{
		Name:       "chansel",
		Antennas:   []string{"A", "B"},
		Timestamps: 2,
		Interval:   1,
		Subbands:   []float64{1e9},
		Channels:   8,
		ChanStep:   1e6,
		Pols:       []string{"XX"},
		Vis:        channelRamp,
	}, nil)
	sel := Selection{Channels: []int{5, 2, 3}}

	res := f.mustRun(t, "amptime", sel)
	if len(res.Datasets) != 3 {
		t.Fatalf("expected 3 channel datasets, got %d", len(res.Datasets))
	}
	for _, ch := range []string{"2", "3", "5"} {
		mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH="+ch)
	}

	chans := f.mustRun(t, "ampchan", sel)
	ds := mustGet(t, chans, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX TIME=0/00:00:00.00")
	assertFloats(t, "x", ds.X(), []float64{2, 3, 5})
	assertFloats(t, "y", ds.Y(), []float64{3, 4, 6})

	freq := f.mustRun(t, "ampfreq", Selection{Channels: []int{1, 3}})
	ds = mustGet(t, freq, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX TIME=0/00:00:01.00")
	assertFloats(t, "MHz", ds.X(), []float64{1001, 1003})

	single := f.mustRun(t, "amptime", Selection{Channels: []int{6}})
	assertFloats(t, "single", mustGet(t, single, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH=6").Y(), []float64{7, 7})
}

func TestRun_ReadFlags(t *testing.T) {
	t.Parallel()

	f := newFixture(t, synthetic.Observation{
		Name:       "flags",
		Antennas:   []string{"A", "B"},
		Timestamps: 2,
		Interval:   1,
		Subbands:   []float64{1e9},
		Channels:   2,
		Pols:       []string{"XX"},
		Flag:       func(_, _, ch, _ int, _ float64) bool { return ch == 1 },
	}, nil)
	name := "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH=1"

	flagged := mustGet(t, f.mustRun(t, "amptime", Selection{ReadFlags: true}), name)
	if !slices.Equal(flagged.Mask(), []bool{true, true}) {
		t.Errorf("expected flagged channel, got mask %v", flagged.Mask())
	}
	ignored := mustGet(t, f.mustRun(t, "amptime", Selection{}), name)
	if !slices.Equal(ignored.Mask(), []bool{false, false}) {
		t.Errorf("flags must be ignored unless read, got mask %v", ignored.Mask())
	}

	// the flagged channel is left out of the channel average
	avg := f.mustRun(t, "amptime", Selection{ReadFlags: true, AverageChannel: average.Scalar})
	ds := mustGet(t, avg, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH=*")
	if slices.Contains(ds.Mask(), true) {
		t.Errorf("averaged points should be unflagged, got %v", ds.Mask())
	}
}

func TestRun_PolarizationProducts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, synthetic.Observation{
		Name:       "pols",
		Antennas:   []string{"A", "B"},
		Timestamps: 1,
		Subbands:   []float64{1e9},
		Channels:   1,
		Pols:       []string{"XX", "YY"},
	}, nil)

	res := f.mustRun(t, "amptime", Selection{
		DataDescriptions: []DDSelection{{FreqGroup: 0, Subband: 0, PolID: 0, Products: []int{1}}},
	})
	if len(res.Datasets) != 1 {
		t.Fatalf("expected only YY, got %d datasets", len(res.Datasets))
	}
	mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=YY CH=0")
}

func TestRun_DuplicateSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t, synthetic.Observation{
		Name:       "dups",
		Antennas:   []string{"A", "B"},
		Timestamps: 2,
		Subbands:   []float64{1e9},
		Channels:   1,
		Pols:       []string{"XX", "YY"},
	}, nil)
	dd := DDSelection{FreqGroup: 0, Subband: 0, PolID: 0}

	tests := []struct {
		name string
		dds  []DDSelection
	}{
		{name: "same description twice", dds: []DDSelection{dd, dd}},
		{name: "same product twice", dds: []DDSelection{{Products: []int{0, 0}}}},
		{name: "product repeated across entries", dds: []DDSelection{{Products: []int{0}}, {Products: []int{1, 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := f.run(t, "amptime", Selection{DataDescriptions: tt.dds})
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected a configuration error, got %v", err)
			}
		})
	}

	// distinct products of one description may be listed separately
	res := f.mustRun(t, "amptime", Selection{
		DataDescriptions: []DDSelection{{Products: []int{0}}, {Products: []int{1}}},
	})
	if len(res.Datasets) != 2 {
		t.Fatalf("expected XX and YY, got %d datasets", len(res.Datasets))
	}
	xx := mustGet(t, res, "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH=0")
	if len(xx.X()) != 2 {
		t.Errorf("expected one point per timestamp, got %d", len(xx.X()))
	}
}

func TestRun_LagData(t *testing.T) {
	t.Parallel()

	f := newFixture(t, synthetic.Observation{
		Name:       "lag",
		Antennas:   []string{"A", "B"},
		Timestamps: 1,
		Subbands:   []float64{1e9},
		Channels:   3,
		Pols:       []string{"XX"},
	}, nil)
	name := "TYPE=phase BL=AB FQ=FQ0 SB=0 SRC=FIELD0 P=XX CH=2"

	data := mustGet(t, f.mustRun(t, "phatime", Selection{}), name).Y()
	lag := mustGet(t, f.mustRun(t, "phatime", Selection{DataColumn: source.ColLagData}), name).Y()
	if math.Abs(data[0]+lag[0]) > 1e-4 || data[0] == 0 {
		t.Errorf("expected conjugate phases, got %v and %v", data, lag)
	}
}

func TestRun_UVPlots(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1,
		sample{t: 0, vis: []complex64{2}},
		sample{t: 1, vis: []complex64{2}},
	)

	uv := mustGet(t, f.mustRun(t, "uv", Selection{}), "TYPE=V BL=AB FQ=FQ0 SB=0 SRC=SRC")
	assertFloats(t, "u", uv.X(), []float64{3, -3, 3, -3})
	assertFloats(t, "v", uv.Y(), []float64{4, -4, 4, -4})

	ampuv := mustGet(t, f.mustRun(t, "ampuv", Selection{}), "TYPE=amplitude BL=AB FQ=FQ0 SB=0 SRC=SRC P=XX CH=0")
	wl := 5 * 1e9 / speedOfLight
	assertFloats(t, "uv distance", ampuv.X(), []float64{wl, wl})
	assertFloats(t, "amplitude", ampuv.Y(), []float64{2, 2})
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	withPols := func(md mapping.Metadata) mapping.Metadata {
		md.Polarizations = []mapping.PolSetup{{ID: 0, Products: []string{"XX", "YY"}}}
		return md
	}
	withoutFreqs := func(md mapping.Metadata) mapping.Metadata {
		md.FreqGroups = []mapping.FreqGroup{{ID: 0, Name: "FQ0", Subbands: []mapping.Subband{{}}}}
		return md
	}

	tests := []struct {
		name     string
		plot     string
		sel      Selection
		meta     func(mapping.Metadata) mapping.Metadata
		want     error
		wantKind string
		opened   bool
	}{
		{"unknown plot", "nosuch", Selection{}, nil, ErrUnknownPlot, "configuration", false},
		{"solint below integration", "amptime", Selection{Solint: ptr(0.05)}, nil, average.ErrSolintTooShort, "configuration", true},
		{"channel solint minimum", "ampchan", Selection{Solint: ptr(MinChannelSolint)}, nil, ErrConfiguration, "configuration", true},
		{"solint and ranges", "ampchan", Selection{Solint: ptr(1.0), TimeRanges: []average.Range{{Start: 0, End: 1}}}, nil, ErrConfiguration, "configuration", true},
		{"reversed range", "ampchan", Selection{TimeRanges: []average.Range{{Start: 2, End: 1}}}, nil, average.ErrBadRange, "configuration", true},
		{"channel out of range", "amptime", Selection{Channels: []int{9}}, nil, ErrConfiguration, "configuration", true},
		{"missing frequencies", "ampfreq", Selection{}, withoutFreqs, ErrNoFrequencyMapping, "configuration", true},
		{"unsupported column", "amptime", Selection{DataColumn: "MODEL_DATA"}, nil, ErrUnsupportedColumn, "unsupported_column", true},
		{"polarization mismatch", "amptime", Selection{}, withPols, ErrConsistency, "consistency", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := manualFixture(t, 2, sample{t: 0, vis: []complex64{1, 1}}, sample{t: 1, vis: []complex64{1, 1}})
			if tt.meta != nil {
				m, err := mapping.New(tt.meta(f.m.Metadata()))
				if err != nil {
					t.Fatalf("mapping.New: %v", err)
				}
				f.m = m
			}

			res, tbl, err := f.run(t, tt.plot, tt.sel)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if res != nil {
				t.Error("no partial result may be returned")
			}
			if got := Kind(err); got != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, got)
			}
			if tbl.Closed() != tt.opened {
				t.Errorf("table closed = %v, want %v", tbl.Closed(), tt.opened)
			}
		})
	}
}

func TestRun_RecordsErrorMetric(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1, sample{t: 0, vis: []complex64{1}})
	if _, _, err := f.run(t, "bogus", Selection{}); !errors.Is(err, ErrUnknownPlot) {
		t.Fatalf("expected ErrUnknownPlot, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.ReduceErrors.WithLabelValues("bogus", "configuration")); got != 1 {
		t.Errorf("expected 1 error for unknown plot, got %v", got)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	f := manualFixture(t, 1, sample{t: 0, vis: []complex64{1}})
	tbl := f.table()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, tbl.Opener(), f.m, "amptime", Selection{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if Kind(err) != "canceled" {
		t.Errorf("expected canceled kind, got %q", Kind(err))
	}
	if !tbl.Closed() {
		t.Error("table must be closed after cancellation")
	}
}

func TestKinds(t *testing.T) {
	t.Parallel()

	kinds := Kinds()
	if len(kinds) != 18 {
		t.Errorf("expected 18 plot kinds, got %d: %v", len(kinds), kinds)
	}
	for _, k := range []string{"amptime", "rnichan", "anpfreq", "wt", "uv", "ampuv"} {
		if !slices.Contains(kinds, k) {
			t.Errorf("missing plot kind %s", k)
		}
	}
	if d, ok := Describe("amptime"); !ok || d != "amplitude versus time" {
		t.Errorf("unexpected description %q", d)
	}
	if _, ok := Describe("refreq"); ok {
		t.Error("refreq is not a plot kind")
	}
}
