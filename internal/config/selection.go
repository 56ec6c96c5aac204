// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/reducer"
)

// ErrSolintUnit is returned for a solint number without a unit.
var ErrSolintUnit = errors.New("solint needs a unit (d, h, m or s)")

var solintUnits = map[byte]float64{
	'd': 86400,
	'h': 3600,
	'm': 60,
	's': 1,
}

// ParseSolint parses a duration such as "1m30s", "2h", "0.5s" or "1d" into
// seconds. An empty string returns nil.
func ParseSolint(s string) (*float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}

	total := 0.0
	rest := s
	for rest != "" {
		i := 0
		for i < len(rest) && (rest[i] == '.' || (rest[i] >= '0' && rest[i] <= '9')) {
			i++
		}
		if i == 0 {
			return nil, fmt.Errorf("invalid solint %q", s)
		}
		if i == len(rest) {
			return nil, fmt.Errorf("%w: %q", ErrSolintUnit, s)
		}
		n, err := strconv.ParseFloat(rest[:i], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid solint %q: %w", s, err)
		}
		scale, ok := solintUnits[rest[i]]
		if !ok {
			return nil, fmt.Errorf("invalid solint unit %q in %q", rest[i], s)
		}
		total += n * scale
		rest = rest[i+1:]
	}

	if total <= 0 {
		return nil, fmt.Errorf("solint must be positive, got %q", s)
	}
	return &total, nil
}

// ParseTimeRange parses "start:end" in seconds.
func ParseTimeRange(s string) (average.Range, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return average.Range{}, fmt.Errorf("time range %q must be start:end", s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(start), 64)
	if err != nil {
		return average.Range{}, fmt.Errorf("invalid time range start in %q: %w", s, err)
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(end), 64)
	if err != nil {
		return average.Range{}, fmt.Errorf("invalid time range end in %q: %w", s, err)
	}
	if b < a {
		return average.Range{}, fmt.Errorf("%w: %q ends before it starts", average.ErrBadRange, s)
	}
	return average.Range{Start: a, End: b}, nil
}

func parseTimeRanges(in []string) ([]average.Range, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]average.Range, 0, len(in))
	for _, s := range in {
		r, err := ParseTimeRange(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ToSelection builds the reducer selection from the table and selection
// sections. The config must have passed Validate.
func (c *Config) ToSelection() (reducer.Selection, error) {
	s := c.Selection

	avgChan, err := average.ParsePolicy(s.AverageChannel)
	if err != nil {
		return reducer.Selection{}, fmt.Errorf("AVERAGE_CHANNEL: %w", err)
	}
	avgTime, err := average.ParsePolicy(s.AverageTime)
	if err != nil {
		return reducer.Selection{}, fmt.Errorf("AVERAGE_TIME: %w", err)
	}
	solint, err := ParseSolint(s.Solint)
	if err != nil {
		return reducer.Selection{}, fmt.Errorf("SOLINT: %w", err)
	}
	ranges, err := parseTimeRanges(s.TimeRanges)
	if err != nil {
		return reducer.Selection{}, fmt.Errorf("TIME_RANGES: %w", err)
	}

	var dds []reducer.DDSelection
	for _, dd := range s.DataDescriptions {
		dds = append(dds, reducer.DDSelection{
			FreqGroup: dd.FreqGroup,
			Subband:   dd.Subband,
			PolID:     dd.PolID,
			Products:  dd.Products,
		})
	}

	var threshold *float64
	if s.WeightThreshold != nil {
		w := *s.WeightThreshold
		threshold = &w
	}

	return reducer.Selection{
		Channels:         append([]int(nil), s.Channels...),
		DataDescriptions: dds,
		AverageChannel:   avgChan,
		AverageTime:      avgTime,
		Solint:           solint,
		TimeRanges:       ranges,
		WeightThreshold:  threshold,
		DataColumn:       c.Table.DataColumn,
		ReadFlags:        c.Table.ReadFlags,
		ChunkSize:        c.Table.ChunkSize,
	}, nil
}
