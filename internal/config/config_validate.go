// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package config

import (
	"fmt"
	"math"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/validation"
)

// Validate checks struct tags, then the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateSelection(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateSelection() error {
	s := c.Selection

	solint, err := ParseSolint(s.Solint)
	if err != nil {
		return fmt.Errorf("SOLINT: %w", err)
	}

	ranges, err := parseTimeRanges(s.TimeRanges)
	if err != nil {
		return fmt.Errorf("TIME_RANGES: %w", err)
	}

	if solint != nil && len(ranges) > 0 {
		return fmt.Errorf("SOLINT and TIME_RANGES are mutually exclusive")
	}

	if w := s.WeightThreshold; w != nil && (math.IsNaN(*w) || math.IsInf(*w, 0)) {
		return fmt.Errorf("WEIGHT_THRESHOLD must be a finite number, got %v", *w)
	}

	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled || c.Cache.InMemory {
		return nil
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("CACHE_PATH is required when CACHE_ENABLED=true and CACHE_IN_MEMORY=false")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, got %q", c.Logging.Level)
	}
	return nil
}
