// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"fmt"
	"math"

	"github.com/tomtom215/visreduce/internal/cube"
	"github.com/tomtom215/visreduce/internal/dataset"
	"github.com/tomtom215/visreduce/internal/label"
	"github.com/tomtom215/visreduce/internal/quantity"
	"github.com/tomtom215/visreduce/internal/source"
)

// speedOfLight in m/s.
const speedOfLight = 299792458.0

var (
	uvAxes = []label.Axis{
		label.AxisType, label.AxisBaseline, label.AxisFreqGroup, label.AxisSubband,
		label.AxisSource,
	}
	uvDistAxes = timeAxes
)

// uvPlot plots uv coverage in meters. Every row adds its (u, v) point and
// the conjugate (-u, -v).
type uvPlot struct {
	p *plan
}

func newUVPlot(p *plan) (rowReducer, error) {
	ignoreAveraging(p, true)
	return &uvPlot{p: p}, nil
}

func (up *uvPlot) mode() dataset.Mode { return dataset.ModeAppend }

func (up *uvPlot) axes() []label.Axis { return uvAxes }

func (up *uvPlot) process(acc *accumulator, c *source.Chunk) error {
	if len(c.UVW) != c.NumRows() {
		return fmt.Errorf("%w: chunk %d has %d uvw for %d rows", ErrConsistency, c.Index, len(c.UVW), c.NumRows())
	}
	for r := range c.NumRows() {
		dd, ok := up.p.dds[c.DataDescID[r]]
		if !ok {
			continue
		}
		key := rowKey(c, r, dd)
		key.Quantity = quantity.UV
		ds := acc.Real(key)
		flagged := up.p.rowFlag(c, r)
		u, v := c.UVW[r][0], c.UVW[r][1]
		if err := ds.Append(u, v, flagged); err != nil {
			return fmt.Errorf("append uv: %w", err)
		}
		if err := ds.Append(-u, -v, flagged); err != nil {
			return fmt.Errorf("append uv: %w", err)
		}
	}
	return nil
}

func (up *uvPlot) finalize(*accumulator) error { return nil }

// uvDistPlot plots amplitude against uv distance in wavelengths.
type uvDistPlot struct {
	p      *plan
	stage  chanStage
	reject rejectFn
	meanNu map[int]float64 // per ddid, for averaged channels
}

func newUVDistPlot(p *plan) (rowReducer, error) {
	ignoreAveraging(p, false)
	up := &uvDistPlot{
		p:      p,
		stage:  newChanStage(p.sel.AverageChannel),
		reject: p.rejecter(),
		meanNu: make(map[int]float64, len(p.dds)),
	}
	for ddid, dd := range p.dds {
		sum := 0.0
		for _, f := range dd.freqs {
			sum += f
		}
		up.meanNu[ddid] = sum / float64(len(dd.freqs))
	}
	return up, nil
}

func (up *uvDistPlot) mode() dataset.Mode { return dataset.ModeAppend }

func (up *uvDistPlot) axes() []label.Axis { return uvDistAxes }

func (up *uvDistPlot) process(acc *accumulator, c *source.Chunk) error {
	if len(c.UVW) != c.NumRows() {
		return fmt.Errorf("%w: chunk %d has %d uvw for %d rows", ErrConsistency, c.Index, len(c.UVW), c.NumRows())
	}
	b, err := up.p.prepare(c)
	if err != nil {
		return err
	}
	amp := up.stage.apply(b.vis, []quantity.Quantity{quantity.Amplitude})[0]

	for r := 0; r < b.n; r++ {
		ddid := c.DataDescID[r]
		dd, ok := up.p.dds[ddid]
		if !ok {
			continue
		}
		key := rowKey(c, r, dd)
		key.Quantity = quantity.Amplitude.Name
		dist := math.Hypot(c.UVW[r][0], c.UVW[r][1])

		for _, ps := range dd.pols {
			key.Pol = ps.name

			if up.stage.averaged() {
				if up.reject(b.weights, r, ps.idx) {
					continue
				}
				key.Kind = label.KindAveraged
				x := dist * up.meanNu[ddid] / speedOfLight
				if err := appendPoint(acc, key, amp, x, r, 0, ps.idx); err != nil {
					return err
				}
				continue
			}

			key.Kind = label.KindChannel
			for i, ch := range up.p.channels {
				if up.reject(b.weights, r, ps.idx) {
					continue
				}
				key.Channel = ch
				x := dist * dd.freqs[i] / speedOfLight
				if err := appendPoint(acc, key, amp, x, r, up.p.local[i], ps.idx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func appendPoint(acc *accumulator, key label.Key, out *cube.Masked[float64], x float64, r, ch, pol int) error {
	if err := acc.Real(key).Append(x, out.Values.At(r, ch, pol), out.IsMasked(r, ch, pol)); err != nil {
		return fmt.Errorf("append %s: %w", key.Quantity, err)
	}
	return nil
}

func (up *uvDistPlot) finalize(*accumulator) error { return nil }
