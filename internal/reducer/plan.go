// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"fmt"
	"slices"

	"github.com/tomtom215/visreduce/internal/cube"
	"github.com/tomtom215/visreduce/internal/label"
	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/mask"
	"github.com/tomtom215/visreduce/internal/source"
	"github.com/tomtom215/visreduce/internal/weight"
)

type polSel struct {
	idx  int
	name string
}

// ddInfo is the precomputed lookup for one selected data description.
type ddInfo struct {
	fq    int
	sb    int
	pols  []polSel
	freqs []float64 // Hz, one per selected channel
}

// plan holds the per-run state shared by every chunk.
type plan struct {
	kind    plotKind
	sel     Selection
	mapping mapping.Mapping

	nchan int
	npol  int

	channels []int // absolute, ascending
	local    []int // channels relative to the slicer start
	slicer   source.Slicer

	dds     map[int]*ddInfo
	masks   *mask.Engine
	weights *weight.Filter

	chunkSize int
	rl        *logging.RunLogger
}

func newPlan(t source.Table, m mapping.Mapping, kind plotKind, sel Selection, rl *logging.RunLogger) (*plan, error) {
	nchan, npol := t.DataShape()
	p := &plan{
		kind:      kind,
		sel:       sel,
		mapping:   m,
		nchan:     nchan,
		npol:      npol,
		chunkSize: sel.chunkSize(),
		rl:        rl,
	}

	if col := sel.dataColumn(); col != source.ColData && col != source.ColLagData {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedColumn, col)
	}

	if err := p.selectChannels(); err != nil {
		return nil, err
	}
	if err := p.selectDataDescriptions(); err != nil {
		return nil, err
	}

	if kind.usesWeights {
		p.weights = weight.NewFilter(sel.WeightThreshold)
	} else {
		if sel.WeightThreshold != nil {
			rl.Ignored("weight_threshold", fmt.Sprint(*sel.WeightThreshold))
		}
		p.weights = weight.NewFilter(nil)
	}

	if kind.needsData {
		engine, err := mask.NewEngine(p.chunkSize, p.local, npol)
		if err != nil {
			if classified := classify(err); classified != err {
				return nil, classified
			}
			return nil, configErr("channel selection: %v", err)
		}
		p.masks = engine
	}
	return p, nil
}

func (p *plan) selectChannels() error {
	if len(p.sel.Channels) == 0 {
		p.channels = make([]int, p.nchan)
		for i := range p.channels {
			p.channels[i] = i
		}
	} else {
		p.channels = slices.Clone(p.sel.Channels)
		slices.Sort(p.channels)
		for i, ch := range p.channels {
			if ch < 0 || ch >= p.nchan {
				return configErr("channel %d out of range [0, %d)", ch, p.nchan)
			}
			if i > 0 && ch == p.channels[i-1] {
				return configErr("channel %d selected twice", ch)
			}
		}
	}
	if len(p.channels) == 0 {
		return configErr("table has no channels")
	}

	first := p.channels[0]
	p.slicer = source.Slicer{Start: first, End: p.channels[len(p.channels)-1] + 1}
	p.local = make([]int, len(p.channels))
	for i, ch := range p.channels {
		p.local[i] = ch - first
	}
	return nil
}

func (p *plan) selectDataDescriptions() error {
	p.dds = make(map[int]*ddInfo)

	if len(p.sel.DataDescriptions) == 0 {
		for _, ddid := range p.mapping.DataDescriptionIDs() {
			entry, err := p.mapping.UnmapDDID(ddid)
			if err != nil {
				return configErr("data description %d: %v", ddid, err)
			}
			if err := p.addDD(ddid, entry, nil); err != nil {
				return err
			}
		}
	} else {
		for _, ds := range p.sel.DataDescriptions {
			ddid, err := p.mapping.DataDescriptionID(ds.FreqGroup, ds.Subband, ds.PolID)
			if err != nil {
				return configErr("data description FQ%d/SB%d/POL%d: %v", ds.FreqGroup, ds.Subband, ds.PolID, err)
			}
			entry := mapping.DDEntry{FreqGroup: ds.FreqGroup, Subband: ds.Subband, PolID: ds.PolID}
			if err := p.addDD(ddid, entry, ds.Products); err != nil {
				return err
			}
		}
	}
	if len(p.dds) == 0 {
		return configErr("no data descriptions selected")
	}
	return nil
}

func (p *plan) addDD(ddid int, entry mapping.DDEntry, products []int) error {
	names, err := p.mapping.Polarizations(entry.PolID)
	if err != nil {
		return configErr("polarization setup %d: %v", entry.PolID, err)
	}
	if len(names) > p.npol {
		return fmt.Errorf("%w: polarization setup %d has %d products, table has %d",
			ErrConsistency, entry.PolID, len(names), p.npol)
	}
	if len(products) == 0 {
		products = make([]int, len(names))
		for i := range products {
			products[i] = i
		}
	}

	existing := p.dds[ddid]
	info := &ddInfo{fq: entry.FreqGroup, sb: entry.Subband}
	for _, idx := range products {
		if idx < 0 || idx >= len(names) {
			return configErr("polarization product %d out of range for setup %d", idx, entry.PolID)
		}
		// A product selected twice would add its samples to the same
		// series twice.
		if info.hasPol(idx) || (existing != nil && existing.hasPol(idx)) {
			return configErr("polarization product %d of data description %d selected twice", idx, ddid)
		}
		info.pols = append(info.pols, polSel{idx: idx, name: names[idx]})
	}

	if p.kind.needsFreqs {
		freqs, err := p.mapping.Frequencies(entry.FreqGroup, entry.Subband)
		if err != nil {
			return fmt.Errorf("%w: FQ%d SB%d: %v", ErrNoFrequencyMapping, entry.FreqGroup, entry.Subband, err)
		}
		for _, ch := range p.channels {
			if ch >= len(freqs) {
				return fmt.Errorf("%w: FQ%d SB%d has %d frequencies, channel %d selected",
					ErrNoFrequencyMapping, entry.FreqGroup, entry.Subband, len(freqs), ch)
			}
			info.freqs = append(info.freqs, freqs[ch])
		}
	}

	if existing != nil {
		existing.pols = append(existing.pols, info.pols...)
		return nil
	}
	p.dds[ddid] = info
	return nil
}

func (d *ddInfo) hasPol(idx int) bool {
	for _, ps := range d.pols {
		if ps.idx == idx {
			return true
		}
	}
	return false
}

// request is the column read for the plan.
func (p *plan) request() source.Request {
	cols := []string{
		source.ColAntenna1, source.ColAntenna2, source.ColTime,
		source.ColDataDescID, source.ColFieldID,
	}
	if p.kind.needsWeight || p.weights.Active() {
		cols = append(cols, source.ColWeight)
	}
	if p.kind.needsUVW {
		cols = append(cols, source.ColUVW)
	}
	if p.sel.ReadFlags {
		cols = append(cols, source.ColFlagRow)
	}

	req := source.Request{ChunkSize: p.chunkSize, Slicers: map[string]source.Slicer{}}
	if p.kind.needsData {
		col := p.sel.dataColumn()
		cols = append(cols, col)
		req.Slicers[col] = p.slicer
		if p.sel.ReadFlags {
			cols = append(cols, source.ColFlag)
			req.Slicers[source.ColFlag] = p.slicer
		}
	}
	req.Columns = cols
	return req
}

// block is one chunk in canonical form.
type block struct {
	n       int
	vis     *cube.Masked[complex64]
	weights *cube.Cube[float32] // (n, 1, npol); nil without a weight column
}

// prepare reshapes and masks one chunk.
func (p *plan) prepare(c *source.Chunk) (*block, error) {
	b := &block{n: c.NumRows()}

	if c.Weight.Values != nil {
		w, err := cube.Canonical(c.Weight, cube.Shape{Rows: b.n, Chans: 1, Pols: p.npol})
		if err != nil {
			return nil, fmt.Errorf("weight: %w", err)
		}
		b.weights = w
	}

	if !p.kind.needsData {
		return b, nil
	}

	shape := cube.Shape{Rows: b.n, Chans: p.slicer.Len(), Pols: p.npol}
	data, err := cube.Canonical(c.Data, shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.sel.dataColumn(), err)
	}
	vis, err := p.masks.Apply(data)
	if err != nil {
		return nil, err
	}
	vis = vis.Or(cube.NonFinite(data))

	if p.sel.ReadFlags {
		flags, err := cube.Canonical(c.Flag, shape)
		if err != nil {
			return nil, fmt.Errorf("flag: %w", err)
		}
		vis = vis.Or(withFlagRow(flags, c.FlagRow))
	}
	if p.weights.Active() {
		vis = vis.Or(p.weights.Mask(b.weights, shape.Chans))
	}
	b.vis = vis
	return b, nil
}

// withFlagRow broadcasts the row flags over a copy of the flag cube.
func withFlagRow(flags *cube.Cube[bool], flagRow []bool) *cube.Cube[bool] {
	out := cube.New[bool](flags.Shape)
	copy(out.Data, flags.Data)
	for r := 0; r < flags.Rows && r < len(flagRow); r++ {
		if !flagRow[r] {
			continue
		}
		for ch := 0; ch < flags.Chans; ch++ {
			for pol := 0; pol < flags.Pols; pol++ {
				out.Set(r, ch, pol, true)
			}
		}
	}
	return out
}

// rowFlag reports the FLAG_ROW of row r when flags are read.
func (p *plan) rowFlag(c *source.Chunk, r int) bool {
	return p.sel.ReadFlags && r < len(c.FlagRow) && c.FlagRow[r]
}

// rowKey returns the key fields shared by every series of row r.
func rowKey(c *source.Chunk, r int, dd *ddInfo) label.Key {
	return label.Key{
		Baseline:  label.Baseline{A1: c.Antenna1[r], A2: c.Antenna2[r]},
		FreqGroup: dd.fq,
		Subband:   dd.sb,
		Field:     c.FieldID[r],
	}
}

// rejectFn decides whether the (row, pol) weight fails the threshold and
// counts one rejection if so. Exactly one implementation is chosen per run.
type rejectFn func(w *cube.Cube[float32], row, pol int) bool

func acceptAll(*cube.Cube[float32], int, int) bool { return false }

func (p *plan) rejecter() rejectFn {
	if !p.weights.Active() {
		return acceptAll
	}
	f := p.weights
	return func(w *cube.Cube[float32], row, pol int) bool {
		return f.Reject(w.At(row, 0, pol))
	}
}
