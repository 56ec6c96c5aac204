// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/cube"
	"github.com/tomtom215/visreduce/internal/dataset"
	"github.com/tomtom215/visreduce/internal/mask"
	"github.com/tomtom215/visreduce/internal/source"
)

var (
	// ErrConfiguration marks a selection that cannot be reduced as asked.
	ErrConfiguration = errors.New("configuration error")

	// ErrConsistency marks data that contradicts the plan built for it.
	ErrConsistency = errors.New("consistency error")

	// ErrUnsupportedColumn is returned for a column with no extraction rule.
	ErrUnsupportedColumn = source.ErrUnsupportedColumn

	// ErrNoFrequencyMapping is returned when a plot needs channel
	// frequencies that the mapping does not have.
	ErrNoFrequencyMapping = fmt.Errorf("%w: no frequency mapping", ErrConfiguration)

	// ErrUnknownPlot is returned for a plot kind that is not registered.
	ErrUnknownPlot = fmt.Errorf("%w: unknown plot kind", ErrConfiguration)
)

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// classify tags errors of the lower packages with their kind.
func classify(err error) error {
	switch {
	case err == nil,
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrConsistency):
		return err
	case errors.Is(err, mask.ErrSliceMismatch),
		errors.Is(err, cube.ErrShape),
		errors.Is(err, dataset.ErrLength),
		errors.Is(err, dataset.ErrMode):
		return fmt.Errorf("%w: %w", ErrConsistency, err)
	case errors.Is(err, average.ErrSolintTooShort),
		errors.Is(err, average.ErrBadRange):
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return err
}

// Kind names the class of err for metrics labels.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	case errors.Is(err, ErrUnsupportedColumn):
		return "unsupported_column"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
