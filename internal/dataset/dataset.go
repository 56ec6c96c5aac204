// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package dataset holds the incrementally built (x, y, mask) series produced
// by a reduction run and the accumulator that maps series keys to them.
//
// A Dataset is either append-mode (every call adds one point) or sum-mode
// (every call adds a whole vector element-wise onto the existing one and
// bumps the contribution count). The mode is fixed when the dataset is
// created. Sum-mode datasets are turned into means by Average, which is
// idempotent.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tomtom215/visreduce/internal/cube"
)

// Mode is the accumulation discipline of a Dataset.
type Mode int

const (
	ModeAppend Mode = iota
	ModeSum
)

var (
	// ErrMode is returned when a dataset is fed through the wrong method
	// for its mode.
	ErrMode = errors.New("dataset accumulation mode mismatch")

	// ErrLength is returned when a summed vector does not match the
	// dataset's existing length.
	ErrLength = errors.New("dataset length mismatch")
)

// Dataset is one (x, y, mask) series. len(x) == len(y) == len(mask) holds
// after every call.
type Dataset[T cube.Number] struct {
	mode     Mode
	x        []float64
	y        []T
	mask     []bool
	count    int
	averaged bool
}

// New creates an empty dataset.
func New[T cube.Number](mode Mode) *Dataset[T] {
	return &Dataset[T]{mode: mode}
}

// FromSlices builds an append-mode dataset from existing slices, which are
// taken over by the dataset.
func FromSlices[T cube.Number](x []float64, y []T, mask []bool) (*Dataset[T], error) {
	if len(x) != len(y) || len(x) != len(mask) {
		return nil, fmt.Errorf("%w: x=%d y=%d mask=%d", ErrLength, len(x), len(y), len(mask))
	}
	return &Dataset[T]{mode: ModeAppend, x: x, y: y, mask: mask}, nil
}

// Append adds a single point.
func (d *Dataset[T]) Append(x float64, y T, masked bool) error {
	if d.mode != ModeAppend {
		return ErrMode
	}
	d.x = append(d.x, x)
	d.y = append(d.y, y)
	d.mask = append(d.mask, masked)
	return nil
}

// Sum adds y element-wise onto the dataset and ORs mask into it. The first
// call fixes x; later calls must supply vectors of the same length.
func (d *Dataset[T]) Sum(x []float64, y []T, mask []bool) error {
	if d.mode != ModeSum {
		return ErrMode
	}
	if d.averaged {
		return fmt.Errorf("%w: sum after average", ErrMode)
	}
	if len(x) != len(y) || len(x) != len(mask) {
		return fmt.Errorf("%w: x=%d y=%d mask=%d", ErrLength, len(x), len(y), len(mask))
	}

	if d.count == 0 {
		d.x = append([]float64(nil), x...)
		d.y = append([]T(nil), y...)
		d.mask = append([]bool(nil), mask...)
		d.count = 1
		return nil
	}

	if len(y) != len(d.y) {
		return fmt.Errorf("%w: have %d points, got %d", ErrLength, len(d.y), len(y))
	}
	for i := range y {
		d.y[i] += y[i]
		d.mask[i] = d.mask[i] || mask[i]
	}
	d.count++
	return nil
}

// Average divides the summed y by the contribution count. It runs at most
// once and does nothing when fewer than two contributions were summed.
func (d *Dataset[T]) Average() {
	if d.averaged || d.count <= 1 {
		return
	}
	for i := range d.y {
		d.y[i] = cube.DivN(d.y[i], d.count)
	}
	d.averaged = true
}

// Len returns the number of points.
func (d *Dataset[T]) Len() int { return len(d.x) }

// X returns the abscissa values. The slice is owned by the dataset.
func (d *Dataset[T]) X() []float64 { return d.x }

// Y returns the ordinate values. The slice is owned by the dataset.
func (d *Dataset[T]) Y() []T { return d.y }

// Mask returns the flag per point. The slice is owned by the dataset.
func (d *Dataset[T]) Mask() []bool { return d.mask }

// Count returns the number of summed contributions.
func (d *Dataset[T]) Count() int { return d.count }

// Averaged reports whether Average has divided the sums.
func (d *Dataset[T]) Averaged() bool { return d.averaged }

// Mode returns the accumulation mode.
func (d *Dataset[T]) Mode() Mode { return d.mode }

// MapY derives a new dataset by applying fn to every y value. x, mask and the
// averaging state are carried over.
func MapY[T, U cube.Number](d *Dataset[T], fn func(T) U) *Dataset[U] {
	out := &Dataset[U]{
		mode:     d.mode,
		x:        append([]float64(nil), d.x...),
		y:        make([]U, len(d.y)),
		mask:     append([]bool(nil), d.mask...),
		count:    d.count,
		averaged: d.averaged,
	}
	for i, v := range d.y {
		out.y[i] = fn(v)
	}
	return out
}

// MaskNonFinite masks every point whose x or y is NaN or infinite and zeroes
// the offending values, so the series can be encoded. It returns the number
// of points it touched.
func (d *Dataset[T]) MaskNonFinite() int {
	n := 0
	for i := range d.x {
		xbad := math.IsNaN(d.x[i]) || math.IsInf(d.x[i], 0)
		ybad := !finite(d.y[i])
		if !xbad && !ybad {
			continue
		}
		if xbad {
			d.x[i] = 0
		}
		if ybad {
			var zero T
			d.y[i] = zero
		}
		d.mask[i] = true
		n++
	}
	return n
}

func finite[T cube.Number](v T) bool {
	switch x := any(v).(type) {
	case float64:
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	case complex128:
		return !cmplx.IsNaN(x) && !cmplx.IsInf(x)
	}
	return true
}
