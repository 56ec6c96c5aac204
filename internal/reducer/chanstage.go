// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/cube"
	"github.com/tomtom215/visreduce/internal/quantity"
)

// chanStage applies channel averaging and derives the quantities of one
// masked block. Averaging stages return a single channel.
type chanStage interface {
	apply(vis *cube.Masked[complex64], qs []quantity.Quantity) []*cube.Masked[float64]
	averaged() bool
}

func newChanStage(p average.Policy) chanStage {
	switch p {
	case average.Scalar:
		return scalarChannels{}
	case average.Vector:
		return vectorChannels{}
	case average.VectorNorm:
		return vectorChannels{normalize: true}
	default:
		return perChannel{}
	}
}

type perChannel struct{}

func (perChannel) apply(vis *cube.Masked[complex64], qs []quantity.Quantity) []*cube.Masked[float64] {
	c := average.Promote(vis, false)
	out := make([]*cube.Masked[float64], len(qs))
	for i, q := range qs {
		out[i] = quantity.Apply(q, c)
	}
	return out
}

func (perChannel) averaged() bool { return false }

type scalarChannels struct{}

func (scalarChannels) apply(vis *cube.Masked[complex64], qs []quantity.Quantity) []*cube.Masked[float64] {
	c := average.Promote(vis, false)
	out := make([]*cube.Masked[float64], len(qs))
	for i, q := range qs {
		out[i] = average.MeanChannels(quantity.Apply(q, c))
	}
	return out
}

func (scalarChannels) averaged() bool { return true }

type vectorChannels struct {
	normalize bool
}

func (v vectorChannels) apply(vis *cube.Masked[complex64], qs []quantity.Quantity) []*cube.Masked[float64] {
	c := average.VectorChannels(vis, v.normalize)
	out := make([]*cube.Masked[float64], len(qs))
	for i, q := range qs {
		out[i] = quantity.Apply(q, c)
	}
	return out
}

func (vectorChannels) averaged() bool { return true }
