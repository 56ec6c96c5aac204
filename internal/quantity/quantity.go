// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package quantity defines the real-valued quantities derived from complex
// visibilities.
package quantity

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tomtom215/visreduce/internal/cube"
)

// Quantity is a named complex-to-real mapping.
type Quantity struct {
	Name string
	Fn   func(complex128) float64
}

var (
	Amplitude = Quantity{Name: "amplitude", Fn: cmplx.Abs}
	Phase     = Quantity{Name: "phase", Fn: func(v complex128) float64 { return cmplx.Phase(v) * 180 / math.Pi }}
	Real      = Quantity{Name: "real", Fn: func(v complex128) float64 { return real(v) }}
	Imag      = Quantity{Name: "imag", Fn: func(v complex128) float64 { return imag(v) }}
)

// Non-visibility series types.
const (
	Weight = "weight"
	UV     = "V"
	Raw    = "raw"
)

// ForPrefix returns the quantities plotted for a plot-name prefix such as
// "amp" in "amptime" or "rni" in "rnichan".
func ForPrefix(prefix string) ([]Quantity, error) {
	switch prefix {
	case "amp":
		return []Quantity{Amplitude}, nil
	case "pha":
		return []Quantity{Phase}, nil
	case "anp":
		return []Quantity{Amplitude, Phase}, nil
	case "re":
		return []Quantity{Real}, nil
	case "im":
		return []Quantity{Imag}, nil
	case "rni":
		return []Quantity{Real, Imag}, nil
	default:
		return nil, fmt.Errorf("unknown quantity prefix %q", prefix)
	}
}

// Apply derives q from every cell of m, keeping the mask.
func Apply(q Quantity, m *cube.Masked[complex128]) *cube.Masked[float64] {
	return cube.Map(m, q.Fn)
}
