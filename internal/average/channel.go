// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package average

import (
	"math/cmplx"

	"github.com/tomtom215/visreduce/internal/cube"
)

// MeanChannels collapses the channel axis with a masked mean. The result has
// one channel; a (row, pol) whose samples are all masked yields a masked zero.
func MeanChannels[T cube.Number](m *cube.Masked[T]) *cube.Masked[T] {
	s := m.Shape()
	outShape := cube.Shape{Rows: s.Rows, Chans: 1, Pols: s.Pols}
	values := cube.New[T](outShape)
	mask := cube.New[bool](outShape)

	for r := 0; r < s.Rows; r++ {
		for p := 0; p < s.Pols; p++ {
			var sum T
			n := 0
			for ch := 0; ch < s.Chans; ch++ {
				if m.IsMasked(r, ch, p) {
					continue
				}
				sum += m.Values.At(r, ch, p)
				n++
			}
			if n == 0 {
				mask.Set(r, 0, p, true)
				continue
			}
			values.Set(r, 0, p, cube.DivN(sum, n))
		}
	}
	return &cube.Masked[T]{Values: values, Mask: mask}
}

// Promote converts the stored visibilities to complex128, unit-normalizing
// them when normalize is set. Zero samples cannot be normalized and are
// masked.
func Promote(m *cube.Masked[complex64], normalize bool) *cube.Masked[complex128] {
	out := cube.Map(m, func(v complex64) complex128 { return complex128(v) })
	if !normalize {
		return out
	}

	var extra *cube.Cube[bool]
	for i, v := range out.Values.Data {
		a := cmplx.Abs(v)
		if a == 0 {
			if extra == nil {
				extra = cube.New[bool](out.Values.Shape)
			}
			extra.Data[i] = true
			continue
		}
		out.Values.Data[i] = v / complex(a, 0)
	}
	return out.Or(extra)
}

// VectorChannels vector-averages the channel axis of a complex cube.
func VectorChannels(m *cube.Masked[complex64], normalize bool) *cube.Masked[complex128] {
	return MeanChannels(Promote(m, normalize))
}
