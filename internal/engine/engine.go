// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package engine produces reductions for the CLI and the HTTP API. It
// validates requests, consults the result store, runs the reducer and
// applies mark expressions. Non-finite points are masked and zeroed before
// a reduction leaves the engine so that it always encodes as JSON.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/marker"
	"github.com/tomtom215/visreduce/internal/metrics"
	"github.com/tomtom215/visreduce/internal/models"
	"github.com/tomtom215/visreduce/internal/reducer"
	"github.com/tomtom215/visreduce/internal/resultstore"
	"github.com/tomtom215/visreduce/internal/source"
)

// Engine produces reductions of one table.
type Engine struct {
	table     string
	open      source.Opener
	mapping   mapping.Mapping
	mappingID string
	store     *resultstore.Store // optional
}

// New returns an engine for the table named table. store may be nil.
//
// Cached reductions are keyed on the table's content version (see
// source.Versioned) and the mapping metadata as well as the request, so
// engines over different tables or mappings can share one store. Tables
// without a version and mappings without metadata are never cached.
func New(table string, open source.Opener, m mapping.Mapping, store *resultstore.Store) *Engine {
	return &Engine{table: table, open: open, mapping: m, mappingID: mappingIdentity(m), store: store}
}

// mappingIdentity digests the mapping metadata, or returns "" when the
// mapping does not expose it.
func mappingIdentity(m mapping.Mapping) string {
	md, ok := m.(interface{ Metadata() mapping.Metadata })
	if !ok {
		return ""
	}
	id, err := resultstore.Fingerprint(md.Metadata())
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to fingerprint mapping, result store disabled")
		return ""
	}
	return id
}

// Table returns the name of the table the engine reduces.
func (e *Engine) Table() string { return e.table }

// Plots lists the registered plot kinds.
func (e *Engine) Plots() []models.PlotKind {
	kinds := reducer.Kinds()
	out := make([]models.PlotKind, 0, len(kinds))
	for _, k := range kinds {
		d, _ := reducer.Describe(k)
		out = append(out, models.PlotKind{Name: k, Description: d})
	}
	return out
}

// Produce returns the reduction for req, from the result store when
// possible.
func (e *Engine) Produce(ctx context.Context, req models.ReduceRequest) (*models.Reduction, error) {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	logger := logging.Ctx(ctx)

	if _, ok := reducer.Describe(req.Plot); !ok {
		return nil, fmt.Errorf("%w: %q", reducer.ErrUnknownPlot, req.Plot)
	}
	var mk *marker.Marker
	if req.Mark != "" {
		var err error
		if mk, err = marker.Compile(req.Mark); err != nil {
			return nil, fmt.Errorf("%w: %w", reducer.ErrConfiguration, err)
		}
	}

	parts := []any{e.table, e.mappingID, req.Plot, req.Selection, req.Mark}
	fp, err := resultstore.Fingerprint(parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint request: %w", err)
	}

	open := e.open
	cacheable := false
	if e.store != nil && e.mappingID != "" {
		held, version := e.openVersioned(ctx)
		if held != nil {
			defer held.release()
			open = held.opener
		}
		if version != "" {
			if fp, err = resultstore.Fingerprint(append(parts, version)...); err != nil {
				return nil, fmt.Errorf("failed to fingerprint request: %w", err)
			}
			if cached := e.lookup(ctx, fp, req.Plot); cached != nil {
				return cached, nil
			}
			cacheable = true
		}
	}

	res, err := reducer.Run(ctx, open, e.mapping, req.Plot, req.Selection)
	if err != nil {
		return nil, err
	}

	out, err := toReduction(res, mk)
	if err != nil {
		return nil, err
	}
	out.RunID = logging.RunIDFromContext(ctx)
	out.Table = e.table
	out.Fingerprint = fp

	if cacheable {
		if err := e.store.Put(ctx, out); err != nil {
			metrics.ResultStoreErrors.WithLabelValues("put").Inc()
			logger.Warn().Err(err).Msg("Failed to store reduction")
		}
	}
	return out, nil
}

// openVersioned opens the table to read its content version. The open table
// is held for the reduction that follows a cache miss. An open failure is
// left for the reduction to report.
func (e *Engine) openVersioned(ctx context.Context) (*heldTable, string) {
	logger := logging.Ctx(ctx)

	tbl, err := e.open(ctx)
	if err != nil {
		return nil, ""
	}
	held := &heldTable{tbl: tbl}

	v, ok := tbl.(source.Versioned)
	if !ok {
		logger.Debug().Str("table", tbl.Name()).Msg("Table has no content version, not caching")
		return held, ""
	}
	version, err := v.Version(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("table", tbl.Name()).Msg("Failed to read table version, not caching")
		return held, ""
	}
	return held, version
}

func (e *Engine) lookup(ctx context.Context, fp, plot string) *models.Reduction {
	logger := logging.Ctx(ctx)

	cached, err := e.store.Get(ctx, fp)
	switch {
	case err == nil:
		metrics.RecordCached(plot)
		logger.Debug().Str("fingerprint", fp).Msg("Reduction served from result store")
		cached.Cached = true
		return cached
	case errors.Is(err, resultstore.ErrNotFound):
		metrics.ResultStoreMisses.Inc()
	default:
		metrics.ResultStoreErrors.WithLabelValues("get").Inc()
		logger.Warn().Err(err).Msg("Result store lookup failed, reducing")
	}
	return nil
}

// heldTable hands an already open table to a single reduction and closes it
// itself if the reduction never takes it.
type heldTable struct {
	tbl   source.Table
	taken bool
}

func (h *heldTable) opener(context.Context) (source.Table, error) {
	if h.taken {
		return nil, errors.New("table already handed out")
	}
	h.taken = true
	return h.tbl, nil
}

func (h *heldTable) release() {
	if h.taken {
		return
	}
	if err := h.tbl.Close(); err != nil {
		logging.Warn().Err(err).Str("table", h.tbl.Name()).Msg("Failed to close table")
	}
}

// toReduction flattens a result into series sorted by label.
func toReduction(res *reducer.Result, mk *marker.Marker) (*models.Reduction, error) {
	out := &models.Reduction{
		Plot:      res.Plot,
		Series:    make([]models.Series, 0, len(res.Datasets)),
		Rejected:  res.Rejected,
		Rows:      res.Rows,
		Chunks:    res.Chunks,
		TookMS:    res.Took.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}

	for l, ds := range res.Datasets {
		ds.MaskNonFinite()
		s := models.Series{
			Label:  l.String(),
			Fields: l.Fields(),
			X:      ds.X(),
			Y:      ds.Y(),
			Mask:   ds.Mask(),
		}
		if mk != nil {
			marked, err := mk.Mark(ds)
			if err != nil {
				return nil, fmt.Errorf("failed to mark %s: %w", s.Label, err)
			}
			s.Marked = marked
		}
		out.Series = append(out.Series, s)
	}
	slices.SortFunc(out.Series, func(a, b models.Series) int {
		switch {
		case a.Label < b.Label:
			return -1
		case a.Label > b.Label:
			return 1
		}
		return 0
	})
	return out, nil
}
