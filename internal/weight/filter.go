// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package weight implements the weight-threshold filter.
//
// Weights arrive per (row, polarization). A Filter compares them against a
// threshold, broadcasting across the channel axis where a per-sample
// decision is needed, and counts every rejected contribution for the run.
package weight

import (
	"sync/atomic"

	"github.com/tomtom215/visreduce/internal/cube"
)

// Filter rejects samples whose weight is below a threshold. The zero value
// is an inactive filter that rejects nothing.
type Filter struct {
	threshold float64
	active    bool
	rejected  atomic.Int64
}

// NewFilter returns an active filter when threshold is non-nil.
func NewFilter(threshold *float64) *Filter {
	f := &Filter{}
	if threshold != nil {
		f.threshold = *threshold
		f.active = true
	}
	return f
}

// Active reports whether a threshold is configured. An inactive filter
// means no weight column needs to be read.
func (f *Filter) Active() bool {
	return f != nil && f.active
}

// Threshold returns the configured threshold.
func (f *Filter) Threshold() float64 {
	return f.threshold
}

// Reject reports whether w fails the threshold and counts it if so. A NaN
// weight never passes an active threshold.
func (f *Filter) Reject(w float32) bool {
	if !f.Active() || float64(w) >= f.threshold {
		return false
	}
	f.rejected.Add(1)
	return true
}

// Rejected returns the number of contributions rejected so far.
func (f *Filter) Rejected() int64 {
	if f == nil {
		return 0
	}
	return f.rejected.Load()
}

// Expand broadcasts a (rows, 1, pols) weight cube across nchan channels.
func Expand(w *cube.Cube[float32], nchan int) *cube.Cube[float32] {
	out := cube.New[float32](cube.Shape{Rows: w.Rows, Chans: nchan, Pols: w.Pols})
	for r := 0; r < w.Rows; r++ {
		for p := 0; p < w.Pols; p++ {
			v := w.At(r, 0, p)
			for ch := 0; ch < nchan; ch++ {
				out.Set(r, ch, p, v)
			}
		}
	}
	return out
}

// Mask returns a (rows, nchan, pols) cube that is true wherever the expanded
// weight is below the threshold. It does not touch the rejection counter;
// nil is returned for an inactive filter.
func (f *Filter) Mask(w *cube.Cube[float32], nchan int) *cube.Cube[bool] {
	if !f.Active() || w == nil {
		return nil
	}
	expanded := Expand(w, nchan)
	out := cube.New[bool](expanded.Shape)
	for i, v := range expanded.Data {
		out.Data[i] = float64(v) < f.threshold
	}
	return out
}
