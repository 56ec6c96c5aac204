// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"fmt"
	"time"

	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/cube"
	"github.com/tomtom215/visreduce/internal/dataset"
	"github.com/tomtom215/visreduce/internal/label"
	"github.com/tomtom215/visreduce/internal/quantity"
	"github.com/tomtom215/visreduce/internal/source"
)

var timeAxes = []label.Axis{
	label.AxisType, label.AxisBaseline, label.AxisFreqGroup, label.AxisSubband,
	label.AxisSource, label.AxisPol, label.AxisChannel,
}

// timePlot reduces quantity-vs-time plots. Every row contributes one point
// per selected channel, or one point when the channel axis is averaged.
type timePlot struct {
	p          *plan
	quantities []quantity.Quantity
	stage      chanStage
	bin        average.TimeBinner
	binned     bool
	reject     rejectFn
}

func newTimePlot(p *plan, qs []quantity.Quantity) (rowReducer, error) {
	tp := &timePlot{
		p:          p,
		quantities: qs,
		stage:      newChanStage(p.sel.AverageChannel),
		bin:        average.NoBinning{},
		reject:     p.rejecter(),
	}

	if p.sel.AverageTime != average.None {
		p.rl.Ignored("average_time", p.sel.AverageTime.String())
	}
	switch {
	case p.sel.Solint != nil && len(p.sel.TimeRanges) > 0:
		return nil, configErr("solint and time ranges are mutually exclusive")
	case p.sel.Solint != nil:
		s, err := average.NewSolint(*p.sel.Solint, p.mapping.IntegrationTime())
		if err != nil {
			return nil, classify(err)
		}
		tp.bin, tp.binned = s, true
	case len(p.sel.TimeRanges) > 0:
		r, err := average.NewRanges(p.sel.TimeRanges)
		if err != nil {
			return nil, classify(err)
		}
		tp.bin, tp.binned = r, true
	}
	return tp, nil
}

func (tp *timePlot) mode() dataset.Mode { return dataset.ModeAppend }

func (tp *timePlot) axes() []label.Axis { return timeAxes }

func (tp *timePlot) process(acc *accumulator, c *source.Chunk) error {
	b, err := tp.p.prepare(c)
	if err != nil {
		return err
	}
	outs := tp.stage.apply(b.vis, tp.quantities)

	for r := 0; r < b.n; r++ {
		dd, ok := tp.p.dds[c.DataDescID[r]]
		if !ok {
			continue
		}
		key := rowKey(c, r, dd)
		t := tp.bin.Bin(c.Time[r])

		for _, ps := range dd.pols {
			key.Pol = ps.name

			if tp.stage.averaged() {
				if tp.reject(b.weights, r, ps.idx) {
					continue
				}
				key.Kind = label.KindAveraged
				if err := tp.appendAll(acc, key, outs, t, r, 0, ps.idx); err != nil {
					return err
				}
				continue
			}

			key.Kind = label.KindChannel
			for i, ch := range tp.p.channels {
				if tp.reject(b.weights, r, ps.idx) {
					continue
				}
				key.Channel = ch
				if err := tp.appendAll(acc, key, outs, t, r, tp.p.local[i], ps.idx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (tp *timePlot) appendAll(acc *accumulator, key label.Key, outs []*cube.Masked[float64], t float64, r, ch, pol int) error {
	for i, q := range tp.quantities {
		out := outs[i]
		if err := acc.Real(key.WithQuantity(q.Name)).Append(t, out.Values.At(r, ch, pol), out.IsMasked(r, ch, pol)); err != nil {
			return fmt.Errorf("append %s: %w", q.Name, err)
		}
	}
	return nil
}

// finalize averages the points that share a time bucket.
func (tp *timePlot) finalize(acc *accumulator) error {
	if !tp.binned {
		return nil
	}
	start := time.Now()
	for _, ds := range acc.RealSet() {
		ds.CollapseX()
	}
	tp.p.rl.Phase("solint", time.Since(start))
	return nil
}
