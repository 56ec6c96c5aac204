// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package models

import (
	"time"

	"github.com/tomtom215/visreduce/internal/reducer"
)

// ReduceRequest asks for the datasets of one plot kind.
type ReduceRequest struct {
	Plot      string            `json:"plot" validate:"required,plotkind"`
	Selection reducer.Selection `json:"selection"`
	// Mark is an optional predicate such as "y > avg + 3*sd"; matching
	// points are listed in Series.Marked.
	Mark string `json:"mark,omitempty" validate:"max=256"`
}

// Series is one labeled dataset.
type Series struct {
	Label  string            `json:"label"`
	Fields map[string]string `json:"fields"`
	X      []float64         `json:"x"`
	Y      []float64         `json:"y"`
	Mask   []bool            `json:"mask"`
	Marked []int             `json:"marked,omitempty"`
}

// Reduction is the finalized output of one run.
type Reduction struct {
	RunID       string    `json:"run_id"`
	Plot        string    `json:"plot"`
	Table       string    `json:"table"`
	Fingerprint string    `json:"fingerprint"`
	Series      []Series  `json:"series"`
	Rejected    int64     `json:"rejected"`
	Rows        int       `json:"rows"`
	Chunks      int       `json:"chunks"`
	TookMS      int64     `json:"took_ms"`
	CreatedAt   time.Time `json:"created_at"`
	Cached      bool      `json:"cached"`
}

// PlotKind describes a registered plot kind.
type PlotKind struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
