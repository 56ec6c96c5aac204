// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package marker

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/tomtom215/visreduce/internal/dataset"
)

func testDataset(t *testing.T, y []float64, mask []bool) *dataset.Dataset[float64] {
	t.Helper()
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	if mask == nil {
		mask = make([]bool, len(y))
	}
	ds, err := dataset.FromSlices(x, y, mask)
	if err != nil {
		t.Fatalf("FromSlices: %v", err)
	}
	return ds
}

func TestCompile_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
	}{
		{"empty", "  "},
		{"unknown variable", "z > 1"},
		{"syntax", "y > (1"},
		{"function call", "max(y) > 1"},
		{"accessor", "y.Value > 1"},
		{"string literal", "'a' == 'a'"},
		{"regex", "y =~ '1'"},
		{"array", "y in (1, 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Compile(tt.expr); !errors.Is(err, ErrExpression) {
				t.Errorf("Compile(%q): expected ErrExpression, got %v", tt.expr, err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []float64{1, 1, 1, 1, 10, 100}, []bool{false, false, false, false, false, true})
	s, ok := Summarize(ds)
	if !ok {
		t.Fatal("expected a summary")
	}
	if math.Abs(s.Avg-2.8) > 1e-12 || math.Abs(s.SD-3.6) > 1e-12 {
		t.Errorf("expected avg 2.8 sd 3.6, got %v %v", s.Avg, s.SD)
	}
	if s.YMax != 10 || s.XMax != 4 || s.YMin != 1 || s.XMin != 0 {
		t.Errorf("flagged point leaked into extrema: %+v", s)
	}

	if _, ok := Summarize(testDataset(t, []float64{5}, []bool{true})); ok {
		t.Error("fully flagged dataset has no summary")
	}
}

func TestMark(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []float64{1, 1, 1, 1, 10, 100}, []bool{false, false, false, false, false, true})

	tests := []struct {
		expr string
		want []int
	}{
		{"y > avg + 1.5 * sd", []int{4}},
		{"x >= xmax - 1 && y < ymax", []int{3}},
		{"y == ymin", []int{0, 1, 2, 3}},
		{"y > 1000", nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			m, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := m.Mark(ds)
			if err != nil {
				t.Fatalf("Mark: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMark_NotBoolean(t *testing.T) {
	t.Parallel()

	m, err := Compile("y + 1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := m.Mark(testDataset(t, []float64{1}, nil)); !errors.Is(err, ErrNotBoolean) {
		t.Errorf("expected ErrNotBoolean, got %v", err)
	}
}
