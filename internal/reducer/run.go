// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/visreduce/internal/dataset"
	"github.com/tomtom215/visreduce/internal/label"
	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/metrics"
	"github.com/tomtom215/visreduce/internal/source"
)

// Result is the output of one run.
type Result struct {
	Plot     string
	Datasets map[label.Label]*dataset.Dataset[float64]
	// Rejected counts the samples dropped by the weight threshold.
	Rejected int64
	Rows     int
	Chunks   int
	Took     time.Duration
}

// Run reduces the table opened by open into the datasets of one plot kind.
// The table is closed on every exit path. On error no partial result is
// returned.
func Run(ctx context.Context, open source.Opener, m mapping.Mapping, plot string, sel Selection) (*Result, error) {
	start := time.Now()
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	rl := logging.NewRunLogger(ctx, plot)

	res, err := run(ctx, open, m, plot, sel, rl)
	if err != nil {
		err = classify(err)
		metrics.RecordRun(plot, time.Since(start), 0, 0, Kind(err))
		rl.Failed(err)
		return nil, err
	}

	res.Took = time.Since(start)
	metrics.RecordRun(plot, res.Took, len(res.Datasets), res.Rejected, "")
	rl.Finished(res.Rows, res.Chunks, len(res.Datasets), res.Took)
	return res, nil
}

func run(ctx context.Context, open source.Opener, m mapping.Mapping, plot string, sel Selection, rl *logging.RunLogger) (*Result, error) {
	kind, ok := registry[plot]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlot, plot)
	}
	if m == nil {
		return nil, configErr("no mapping")
	}

	res := &Result{Plot: plot}
	err := source.WithTable(ctx, open, func(t source.Table) error {
		p, err := newPlan(t, m, kind, sel, rl)
		if err != nil {
			return err
		}
		red, err := kind.build(p)
		if err != nil {
			return err
		}
		req := p.request()
		if err := source.CheckColumns(req.Columns); err != nil {
			return err
		}
		rl.Started(t.Name(), req.Columns, req.ChunkSize)

		queryStart := time.Now()
		acc, err := source.Reduce(ctx, t, req, dataset.NewAccumulator[label.Key](red.mode()),
			func(acc *accumulator, c *source.Chunk) (*accumulator, error) {
				if err := red.process(acc, c); err != nil {
					return nil, err
				}
				res.Rows += c.NumRows()
				res.Chunks++
				metrics.RecordChunk(plot, c.NumRows())
				rl.Chunk(c.Index, c.NumRows(), acc.Len())
				return acc, nil
			})
		if err != nil {
			return err
		}
		rl.Phase("query", time.Since(queryStart))

		if err := red.finalize(acc); err != nil {
			return err
		}
		res.Datasets, err = buildLabels(acc, red.axes(), m)
		if err != nil {
			return err
		}
		res.Rejected = p.weights.Rejected()
		rl.Rejected(res.Rejected, p.weights.Threshold())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// buildLabels resolves every real dataset key into its semantic label.
// Time labels are precise enough to keep timestamps one integration time
// apart on distinct labels. Timestamps closer than that, or closer than
// a microsecond, still collide and fail as a consistency error.
func buildLabels(acc *accumulator, axes []label.Axis, m mapping.Mapping) (map[label.Label]*dataset.Dataset[float64], error) {
	b := label.NewBuilder(axes, label.Unmappers{
		Baseline:  m.BaselineName,
		FreqGroup: m.FreqGroupName,
		Source:    m.FieldName,
		Time:      label.TimeFormatter(label.TimeDecimals(m.IntegrationTime())),
	})

	out := make(map[label.Label]*dataset.Dataset[float64], len(acc.RealSet()))
	for key, ds := range acc.RealSet() {
		l := b.Build(key)
		if _, dup := out[l]; dup {
			return nil, fmt.Errorf("%w: distinct series share label %q", ErrConsistency, l)
		}
		out[l] = ds
	}
	return out, nil
}
