// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package mask builds the channel-selection occlusion mask applied to every
// chunk before averaging.
//
// Channel indices handed to Build are local to the column slice the source
// read, i.e. the first selected channel is always 0. When the selection is the
// contiguous run 0..n the slice already contains exactly the wanted channels
// and the returned Fn does no work at all.
package mask

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tomtom215/visreduce/internal/cube"
)

// ErrSliceMismatch is returned when a single-channel selection does not sit
// at local index 0, meaning the upstream slicer did not narrow the read.
var ErrSliceMismatch = errors.New("single selected channel is not at local index 0")

// Fn wraps a data cube in its occlusion mask.
type Fn func(data *cube.Cube[complex64]) *cube.Masked[complex64]

// Identity is the Fn used when no channel needs masking.
func Identity(data *cube.Cube[complex64]) *cube.Masked[complex64] {
	return cube.NoMask(data)
}

// Build returns the mask function for chunks of nrow rows and npol
// polarizations. chanIdx must be sorted ascending with no duplicates.
func Build(nrow int, chanIdx []int, npol int) (Fn, error) {
	if len(chanIdx) == 0 {
		return nil, fmt.Errorf("empty channel selection")
	}
	if !slices.IsSorted(chanIdx) || chanIdx[0] < 0 {
		return nil, fmt.Errorf("channel selection %v must be sorted and non-negative", chanIdx)
	}

	last := chanIdx[len(chanIdx)-1]
	switch {
	case len(chanIdx) == 1 && last != 0:
		return nil, fmt.Errorf("%w: got %d", ErrSliceMismatch, last)
	case len(chanIdx) == last+1:
		return Identity, nil
	}

	m := cube.Filled(cube.Shape{Rows: nrow, Chans: last + 1, Pols: npol}, true)
	for r := 0; r < nrow; r++ {
		for _, ch := range chanIdx {
			for p := 0; p < npol; p++ {
				m.Set(r, ch, p, false)
			}
		}
	}

	return func(data *cube.Cube[complex64]) *cube.Masked[complex64] {
		return &cube.Masked[complex64]{Values: data, Mask: m}
	}, nil
}

// Engine caches the mask for full-size chunks and rebuilds it for any chunk
// whose row count or polarization count differs.
type Engine struct {
	chunkSize int
	chanIdx   []int
	npol      int
	full      Fn
}

// NewEngine validates the selection and prebuilds the full-chunk mask.
func NewEngine(chunkSize int, chanIdx []int, npol int) (*Engine, error) {
	fn, err := Build(chunkSize, chanIdx, npol)
	if err != nil {
		return nil, err
	}
	return &Engine{
		chunkSize: chunkSize,
		chanIdx:   slices.Clone(chanIdx),
		npol:      npol,
		full:      fn,
	}, nil
}

// For returns the mask function for a chunk of the given shape.
func (e *Engine) For(nrow, npol int) (Fn, error) {
	if nrow == e.chunkSize && npol == e.npol {
		return e.full, nil
	}
	return Build(nrow, e.chanIdx, npol)
}

// Apply masks one chunk's data cube.
func (e *Engine) Apply(data *cube.Cube[complex64]) (*cube.Masked[complex64], error) {
	fn, err := e.For(data.Rows, data.Pols)
	if err != nil {
		return nil, err
	}
	return fn(data), nil
}
