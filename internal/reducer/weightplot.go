// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"fmt"

	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/dataset"
	"github.com/tomtom215/visreduce/internal/label"
	"github.com/tomtom215/visreduce/internal/quantity"
	"github.com/tomtom215/visreduce/internal/source"
)

var weightAxes = []label.Axis{
	label.AxisType, label.AxisBaseline, label.AxisFreqGroup, label.AxisSubband,
	label.AxisSource, label.AxisPol,
}

// weightPlot plots the per-polarization row weight against time.
type weightPlot struct {
	p      *plan
	reject rejectFn
}

func newWeightPlot(p *plan) (rowReducer, error) {
	ignoreAveraging(p, true)
	return &weightPlot{p: p, reject: p.rejecter()}, nil
}

// ignoreAveraging warns about averaging settings a plot kind has no axis for.
func ignoreAveraging(p *plan, channel bool) {
	if channel && p.sel.AverageChannel != average.None {
		p.rl.Ignored("average_channel", p.sel.AverageChannel.String())
	}
	if p.sel.AverageTime != average.None {
		p.rl.Ignored("average_time", p.sel.AverageTime.String())
	}
	if p.sel.Solint != nil {
		p.rl.Ignored("solint", fmt.Sprint(*p.sel.Solint))
	}
	if len(p.sel.TimeRanges) > 0 {
		p.rl.Ignored("time_ranges", fmt.Sprint(len(p.sel.TimeRanges)))
	}
}

func (wp *weightPlot) mode() dataset.Mode { return dataset.ModeAppend }

func (wp *weightPlot) axes() []label.Axis { return weightAxes }

func (wp *weightPlot) process(acc *accumulator, c *source.Chunk) error {
	b, err := wp.p.prepare(c)
	if err != nil {
		return err
	}
	if b.weights == nil {
		return fmt.Errorf("%w: chunk %d has no weight column", ErrConsistency, c.Index)
	}

	for r := 0; r < b.n; r++ {
		dd, ok := wp.p.dds[c.DataDescID[r]]
		if !ok {
			continue
		}
		key := rowKey(c, r, dd)
		key.Quantity = quantity.Weight
		flagged := wp.p.rowFlag(c, r)

		for _, ps := range dd.pols {
			if wp.reject(b.weights, r, ps.idx) {
				continue
			}
			key.Pol = ps.name
			w := float64(b.weights.At(r, 0, ps.idx))
			if err := acc.Real(key).Append(c.Time[r], w, flagged); err != nil {
				return fmt.Errorf("append weight: %w", err)
			}
		}
	}
	return nil
}

func (wp *weightPlot) finalize(*accumulator) error { return nil }
