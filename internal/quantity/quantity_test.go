// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package quantity

import (
	"math"
	"testing"
)

func TestQuantities(t *testing.T) {
	t.Parallel()

	v := complex(0, 2)
	tests := []struct {
		q    Quantity
		want float64
	}{
		{Amplitude, 2},
		{Phase, 90},
		{Real, 0},
		{Imag, 2},
	}
	for _, tt := range tests {
		if got := tt.q.Fn(v); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s(%v) = %g, want %g", tt.q.Name, v, got, tt.want)
		}
	}
}

func TestForPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		names  []string
	}{
		{"amp", []string{"amplitude"}},
		{"anp", []string{"amplitude", "phase"}},
		{"rni", []string{"real", "imag"}},
	}
	for _, tt := range tests {
		qs, err := ForPrefix(tt.prefix)
		if err != nil {
			t.Fatalf("ForPrefix(%q): %v", tt.prefix, err)
		}
		if len(qs) != len(tt.names) {
			t.Fatalf("ForPrefix(%q): got %d quantities", tt.prefix, len(qs))
		}
		for i, q := range qs {
			if q.Name != tt.names[i] {
				t.Errorf("ForPrefix(%q)[%d] = %s, want %s", tt.prefix, i, q.Name, tt.names[i])
			}
		}
	}

	if _, err := ForPrefix("snr"); err == nil {
		t.Error("expected error for unknown prefix")
	}
}
