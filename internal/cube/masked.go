// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package cube

import "math/cmplx"

// Masked pairs a value cube with an occlusion mask (true = excluded).
// A nil Mask means nothing is masked. The mask may cover fewer channels than
// the values; channels beyond its extent count as masked.
type Masked[T any] struct {
	Values *Cube[T]
	Mask   *Cube[bool]
}

// NoMask wraps values with an empty mask.
func NoMask[T any](values *Cube[T]) *Masked[T] {
	return &Masked[T]{Values: values}
}

// IsMasked reports whether (row, ch, pol) is excluded.
func (m *Masked[T]) IsMasked(row, ch, pol int) bool {
	if m.Mask == nil {
		return false
	}
	if ch >= m.Mask.Chans {
		return true
	}
	return m.Mask.At(row, ch, pol)
}

// Shape returns the shape of the value cube.
func (m *Masked[T]) Shape() Shape {
	return m.Values.Shape
}

// Or returns a copy whose mask is the logical OR of the current mask and
// extra. extra must have the same shape as the values.
func (m *Masked[T]) Or(extra *Cube[bool]) *Masked[T] {
	if extra == nil {
		return m
	}
	s := m.Values.Shape
	combined := New[bool](s)
	for r := 0; r < s.Rows; r++ {
		for ch := 0; ch < s.Chans; ch++ {
			for p := 0; p < s.Pols; p++ {
				combined.Set(r, ch, p, m.IsMasked(r, ch, p) || extra.At(r, ch, p))
			}
		}
	}
	return &Masked[T]{Values: m.Values, Mask: combined}
}

// Map applies fn to every cell, keeping the mask.
func Map[T, U any](m *Masked[T], fn func(T) U) *Masked[U] {
	out := New[U](m.Values.Shape)
	for i, v := range m.Values.Data {
		out.Data[i] = fn(v)
	}
	return &Masked[U]{Values: out, Mask: m.Mask}
}

// NonFinite marks every NaN or infinite visibility. It returns nil when all
// values are finite.
func NonFinite(c *Cube[complex64]) *Cube[bool] {
	var out *Cube[bool]
	for i, v := range c.Data {
		if z := complex128(v); cmplx.IsNaN(z) || cmplx.IsInf(z) {
			if out == nil {
				out = New[bool](c.Shape)
			}
			out.Data[i] = true
		}
	}
	return out
}
