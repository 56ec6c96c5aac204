// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package average

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrSolintTooShort means the solution interval does not exceed the
	// integration time of the data.
	ErrSolintTooShort = errors.New("solint must exceed the integration time")

	// ErrBadRange is returned for empty, reversed or overlapping time ranges.
	ErrBadRange = errors.New("invalid time range")
)

// TimeBinner maps a timestamp to the x value of its bucket.
type TimeBinner interface {
	Bin(t float64) float64
}

// NoBinning leaves every timestamp in its own bucket.
type NoBinning struct{}

// Bin implements TimeBinner.
func (NoBinning) Bin(t float64) float64 { return t }

// Solint bins timestamps into fixed-width buckets and reports each as the
// bucket midpoint.
type Solint struct {
	Width float64
}

// NewSolint checks width against the data's integration time.
func NewSolint(width, integration float64) (Solint, error) {
	if width <= 0 || math.IsNaN(width) {
		return Solint{}, fmt.Errorf("%w: got %gs", ErrSolintTooShort, width)
	}
	if width <= integration {
		return Solint{}, fmt.Errorf("%w: solint %gs, integration time %gs", ErrSolintTooShort, width, integration)
	}
	return Solint{Width: width}, nil
}

// Bin implements TimeBinner.
func (s Solint) Bin(t float64) float64 {
	return math.Floor(t/s.Width)*s.Width + s.Width/2
}

// Range is a closed time interval [Start, End].
type Range struct {
	Start float64 `json:"start" koanf:"start"`
	End   float64 `json:"end" koanf:"end"`
}

// Mid returns the midpoint of the interval.
func (r Range) Mid() float64 {
	return (r.Start + r.End) / 2
}

// Ranges bins timestamps into explicit intervals. A timestamp covered by no
// interval is returned unchanged and so forms a bucket of its own.
type Ranges struct {
	ranges []Range
}

// NewRanges sorts the intervals by start and rejects overlaps.
func NewRanges(rs []Range) (*Ranges, error) {
	if len(rs) == 0 {
		return nil, fmt.Errorf("%w: no intervals", ErrBadRange)
	}
	sorted := make([]Range, len(rs))
	copy(sorted, rs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, r := range sorted {
		if r.End < r.Start {
			return nil, fmt.Errorf("%w: [%g, %g] ends before it starts", ErrBadRange, r.Start, r.End)
		}
		if i > 0 && r.Start <= sorted[i-1].End {
			return nil, fmt.Errorf("%w: [%g, %g] overlaps [%g, %g]",
				ErrBadRange, r.Start, r.End, sorted[i-1].Start, sorted[i-1].End)
		}
	}
	return &Ranges{ranges: sorted}, nil
}

// Bin implements TimeBinner.
func (b *Ranges) Bin(t float64) float64 {
	i := sort.Search(len(b.ranges), func(i int) bool { return b.ranges[i].End >= t })
	if i < len(b.ranges) && b.ranges[i].Start <= t {
		return b.ranges[i].Mid()
	}
	return t
}

// Intervals returns a copy of the sorted intervals.
func (b *Ranges) Intervals() []Range {
	out := make([]Range, len(b.ranges))
	copy(out, b.ranges)
	return out
}
