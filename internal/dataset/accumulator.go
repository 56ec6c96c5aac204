// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package dataset

// Accumulator maps series keys to datasets for one reduction run. Real
// holds derived quantities; Raw holds complex samples whose quantities are
// derived only after averaging. An Accumulator must not be reused across
// runs; build a fresh one with NewAccumulator.
type Accumulator[K comparable] struct {
	mode Mode
	real map[K]*Dataset[float64]
	raw  map[K]*Dataset[complex128]
}

// NewAccumulator returns an empty accumulator whose datasets are created
// with the given mode.
func NewAccumulator[K comparable](mode Mode) *Accumulator[K] {
	return &Accumulator[K]{
		mode: mode,
		real: make(map[K]*Dataset[float64]),
		raw:  make(map[K]*Dataset[complex128]),
	}
}

// Real returns the real-valued dataset for k, creating it on first use.
func (a *Accumulator[K]) Real(k K) *Dataset[float64] {
	ds, ok := a.real[k]
	if !ok {
		ds = New[float64](a.mode)
		a.real[k] = ds
	}
	return ds
}

// Raw returns the complex dataset for k, creating it on first use.
func (a *Accumulator[K]) Raw(k K) *Dataset[complex128] {
	ds, ok := a.raw[k]
	if !ok {
		ds = New[complex128](a.mode)
		a.raw[k] = ds
	}
	return ds
}

// Len returns the total number of datasets.
func (a *Accumulator[K]) Len() int {
	return len(a.real) + len(a.raw)
}

// RealSet returns the real-valued datasets.
func (a *Accumulator[K]) RealSet() map[K]*Dataset[float64] { return a.real }

// RawSet returns the complex datasets.
func (a *Accumulator[K]) RawSet() map[K]*Dataset[complex128] { return a.raw }

// AverageAll finalizes every dataset.
func (a *Accumulator[K]) AverageAll() {
	for _, ds := range a.real {
		ds.Average()
	}
	for _, ds := range a.raw {
		ds.Average()
	}
}

// SetReal stores ds under k, replacing any existing real dataset.
func (a *Accumulator[K]) SetReal(k K, ds *Dataset[float64]) {
	a.real[k] = ds
}

// DropRaw discards every complex dataset.
func (a *Accumulator[K]) DropRaw() {
	a.raw = make(map[K]*Dataset[complex128])
}
