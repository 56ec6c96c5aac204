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

var chanAxes = []label.Axis{
	label.AxisType, label.AxisBaseline, label.AxisFreqGroup, label.AxisSubband,
	label.AxisSource, label.AxisPol, label.AxisTime,
}

// chanPlot reduces quantity-vs-channel and quantity-vs-frequency plots.
// Every (row, pol) contributes one vector over the selected channels; rows
// in the same time bucket are summed and averaged at the end.
type chanPlot struct {
	p          *plan
	quantities []quantity.Quantity
	policy     average.Policy
	bin        average.TimeBinner
	byFreq     bool
	reject     rejectFn
	xs         map[int][]float64 // per ddid
}

func newChanPlot(p *plan, qs []quantity.Quantity, byFreq bool) (rowReducer, error) {
	cp := &chanPlot{
		p:          p,
		quantities: qs,
		policy:     p.sel.AverageTime,
		bin:        average.NoBinning{},
		byFreq:     byFreq,
		reject:     p.rejecter(),
	}

	if p.sel.AverageChannel != average.None {
		p.rl.Ignored("average_channel", p.sel.AverageChannel.String())
	}

	solint, ranges := p.sel.Solint, p.sel.TimeRanges
	if solint != nil && len(ranges) > 0 {
		return nil, configErr("solint and time ranges are mutually exclusive")
	}
	if solint != nil && *solint <= MinChannelSolint {
		return nil, configErr("solint %gs must be unset or greater than %gs", *solint, MinChannelSolint)
	}
	if (solint != nil || len(ranges) > 0) && cp.policy == average.None {
		cp.policy = average.Scalar
		p.rl.Defaulted("average_time", cp.policy.String())
	}

	if cp.policy != average.None {
		switch {
		case solint != nil:
			s, err := average.NewSolint(*solint, p.mapping.IntegrationTime())
			if err != nil {
				return nil, classify(err)
			}
			cp.bin = s
		case len(ranges) > 0:
			r, err := average.NewRanges(ranges)
			if err != nil {
				return nil, classify(err)
			}
			cp.bin = r
		default:
			start, end := p.mapping.TimeRange()
			r, err := average.NewRanges([]average.Range{{Start: start, End: end}})
			if err != nil {
				return nil, classify(err)
			}
			cp.bin = r
		}
	}

	cp.xs = make(map[int][]float64, len(p.dds))
	for ddid, dd := range p.dds {
		x := make([]float64, len(p.channels))
		for i, ch := range p.channels {
			if byFreq {
				x[i] = dd.freqs[i] / 1e6
			} else {
				x[i] = float64(ch)
			}
		}
		cp.xs[ddid] = x
	}
	return cp, nil
}

func (cp *chanPlot) mode() dataset.Mode { return dataset.ModeSum }

func (cp *chanPlot) axes() []label.Axis { return chanAxes }

func (cp *chanPlot) process(acc *accumulator, c *source.Chunk) error {
	b, err := cp.p.prepare(c)
	if err != nil {
		return err
	}

	// Vector policies keep the complex samples; quantities are derived in
	// finalize once the buckets are averaged.
	var raw *cube.Masked[complex128]
	var outs []*cube.Masked[float64]
	if cp.policy.IsVector() {
		raw = average.Promote(b.vis, cp.policy == average.VectorNorm)
	} else {
		outs = perChannel{}.apply(b.vis, cp.quantities)
	}

	nch := len(cp.p.channels)
	for r := 0; r < b.n; r++ {
		ddid := c.DataDescID[r]
		dd, ok := cp.p.dds[ddid]
		if !ok {
			continue
		}
		x := cp.xs[ddid]
		key := rowKey(c, r, dd)
		key.Kind = label.KindTime
		key.Time = cp.bin.Bin(c.Time[r])

		for _, ps := range dd.pols {
			if cp.reject(b.weights, r, ps.idx) {
				continue
			}
			key.Pol = ps.name

			if raw != nil {
				y := make([]complex128, nch)
				m := make([]bool, nch)
				for i, local := range cp.p.local {
					y[i] = raw.Values.At(r, local, ps.idx)
					m[i] = raw.IsMasked(r, local, ps.idx)
				}
				if err := acc.Raw(key.WithQuantity(quantity.Raw)).Sum(x, y, m); err != nil {
					return fmt.Errorf("sum %s: %w", quantity.Raw, err)
				}
				continue
			}

			for qi, q := range cp.quantities {
				out := outs[qi]
				y := make([]float64, nch)
				m := make([]bool, nch)
				for i, local := range cp.p.local {
					y[i] = out.Values.At(r, local, ps.idx)
					m[i] = out.IsMasked(r, local, ps.idx)
				}
				if err := acc.Real(key.WithQuantity(q.Name)).Sum(x, y, m); err != nil {
					return fmt.Errorf("sum %s: %w", q.Name, err)
				}
			}
		}
	}
	return nil
}

// finalize averages every bucket, then derives the quantities of the
// vector-averaged buckets and replaces the raw datasets with them.
func (cp *chanPlot) finalize(acc *accumulator) error {
	start := time.Now()
	acc.AverageAll()
	for key, raw := range acc.RawSet() {
		for _, q := range cp.quantities {
			acc.SetReal(key.WithQuantity(q.Name), dataset.MapY(raw, q.Fn))
		}
	}
	acc.DropRaw()
	cp.p.rl.Phase("time_average", time.Since(start))
	return nil
}
