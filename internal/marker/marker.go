// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package marker selects points of a dataset with a user supplied predicate
// such as "y > avg + 3*sd".
//
// Expressions are compiled with govaluate and then checked token by token:
// only the variables listed in Variables, numbers, arithmetic, comparison
// and logical operators are accepted. Function calls, accessors, strings,
// regular expressions and array literals are rejected at compile time, so
// an expression can only ever compute over the point and the summary of
// its dataset.
package marker

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/casbin/govaluate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/visreduce/internal/dataset"
)

// Variables are the names an expression may reference.
var Variables = []string{"x", "y", "avg", "sd", "xmin", "xmax", "ymin", "ymax"}

var (
	// ErrExpression is returned for an expression that fails to compile or
	// uses anything outside the allowed subset.
	ErrExpression = errors.New("invalid mark expression")

	// ErrNotBoolean is returned when an expression does not yield a bool.
	ErrNotBoolean = errors.New("mark expression is not a predicate")
)

// Marker is a compiled mark expression. It is safe for concurrent use.
type Marker struct {
	source string
	expr   *govaluate.EvaluableExpression
}

// Compile parses and checks src.
func Compile(src string) (*Marker, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty", ErrExpression)
	}
	expr, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExpression, err)
	}

	for _, tok := range expr.Tokens() {
		switch tok.Kind {
		case govaluate.VARIABLE:
			name, _ := tok.Value.(string)
			if !slices.Contains(Variables, name) {
				return nil, fmt.Errorf("%w: unknown variable %q", ErrExpression, name)
			}
		case govaluate.FUNCTION, govaluate.ACCESSOR, govaluate.STRING,
			govaluate.PATTERN, govaluate.TIME, govaluate.SEPARATOR:
			return nil, fmt.Errorf("%w: %s not allowed", ErrExpression, tok.Kind.String())
		case govaluate.COMPARATOR:
			if op, _ := tok.Value.(string); op == "=~" || op == "!~" || op == "in" {
				return nil, fmt.Errorf("%w: operator %s not allowed", ErrExpression, op)
			}
		}
	}
	return &Marker{source: src, expr: expr}, nil
}

// String returns the expression source.
func (m *Marker) String() string { return m.source }

// Summary holds the statistics of the unflagged points of a dataset.
type Summary struct {
	Avg  float64
	SD   float64
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// Summarize computes the summary of ds. ok is false when every point is
// flagged.
func Summarize(ds *dataset.Dataset[float64]) (s Summary, ok bool) {
	var xs, ys []float64
	for i, masked := range ds.Mask() {
		if masked {
			continue
		}
		xs = append(xs, ds.X()[i])
		ys = append(ys, ds.Y()[i])
	}
	if len(ys) == 0 {
		return Summary{}, false
	}
	s.Avg, s.SD = stat.PopMeanStdDev(ys, nil)
	s.XMin, s.XMax = floats.Min(xs), floats.Max(xs)
	s.YMin, s.YMax = floats.Min(ys), floats.Max(ys)
	return s, true
}

// Mark returns the indices of the unflagged points for which the
// expression holds.
func (m *Marker) Mark(ds *dataset.Dataset[float64]) ([]int, error) {
	s, ok := Summarize(ds)
	if !ok {
		return nil, nil
	}
	params := map[string]interface{}{
		"avg":  s.Avg,
		"sd":   s.SD,
		"xmin": s.XMin,
		"xmax": s.XMax,
		"ymin": s.YMin,
		"ymax": s.YMax,
	}

	var out []int
	for i, masked := range ds.Mask() {
		if masked {
			continue
		}
		params["x"] = ds.X()[i]
		params["y"] = ds.Y()[i]
		v, err := m.expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("evaluate %q at point %d: %w", m.source, i, err)
		}
		hit, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("%w: %q yields %T", ErrNotBoolean, m.source, v)
		}
		if hit {
			out = append(out, i)
		}
	}
	return out, nil
}
