// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package cube provides the dense (row, channel, polarization) arrays that a
// chunk of visibility rows is unpacked into, plus their masked views.
package cube

import (
	"fmt"
)

// Shape is the canonical (row, channel, polarization) extent of a cube.
type Shape struct {
	Rows  int
	Chans int
	Pols  int
}

// Len returns the number of cells in the shape.
func (s Shape) Len() int {
	return s.Rows * s.Chans * s.Pols
}

// Index returns the flat row-major offset of (row, ch, pol).
func (s Shape) Index(row, ch, pol int) int {
	return (row*s.Chans+ch)*s.Pols + pol
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	return fmt.Sprintf("(%d x %d x %d)", s.Rows, s.Chans, s.Pols)
}

// Cube is a dense row-major (row, channel, polarization) array.
type Cube[T any] struct {
	Shape
	Data []T
}

// New allocates a zero-valued cube of the given shape.
func New[T any](s Shape) *Cube[T] {
	return &Cube[T]{Shape: s, Data: make([]T, s.Len())}
}

// Filled allocates a cube with every cell set to v.
func Filled[T any](s Shape, v T) *Cube[T] {
	c := New[T](s)
	for i := range c.Data {
		c.Data[i] = v
	}
	return c
}

// At returns the cell at (row, ch, pol).
func (c *Cube[T]) At(row, ch, pol int) T {
	return c.Data[c.Index(row, ch, pol)]
}

// Set stores v at (row, ch, pol).
func (c *Cube[T]) Set(row, ch, pol int, v T) {
	c.Data[c.Index(row, ch, pol)] = v
}

// Raw is a cube as delivered by a table source. The source may have dropped
// any degenerate (extent 1) axis, so Dims can have fewer than three entries.
type Raw[T any] struct {
	Dims   []int
	Values []T
}

// Canonical turns a raw column cell block into a (rows, chans, pols) cube.
func Canonical[T any](r Raw[T], want Shape) (*Cube[T], error) {
	if err := checkDims(r.Dims, want); err != nil {
		return nil, err
	}
	if len(r.Values) != want.Len() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrShape, len(r.Values), want)
	}
	return &Cube[T]{Shape: want, Data: r.Values}, nil
}
