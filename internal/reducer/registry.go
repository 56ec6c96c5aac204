// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"slices"

	"github.com/tomtom215/visreduce/internal/dataset"
	"github.com/tomtom215/visreduce/internal/label"
	"github.com/tomtom215/visreduce/internal/quantity"
	"github.com/tomtom215/visreduce/internal/source"
)

type accumulator = dataset.Accumulator[label.Key]

// rowReducer is the per-plot-kind chunk callback plus its finalization.
type rowReducer interface {
	mode() dataset.Mode
	axes() []label.Axis
	process(acc *accumulator, c *source.Chunk) error
	finalize(acc *accumulator) error
}

type plotKind struct {
	name        string
	description string

	needsData   bool // visibility column and mask engine
	needsFreqs  bool // channel frequencies from the mapping
	needsUVW    bool
	needsWeight bool // weight column even without a threshold
	usesWeights bool // honours the weight threshold

	build func(p *plan) (rowReducer, error)
}

var registry = map[string]plotKind{}

func register(k plotKind) {
	registry[k.name] = k
}

var quantityNames = map[string]string{
	"amp": "amplitude",
	"pha": "phase",
	"anp": "amplitude and phase",
	"re":  "real part",
	"im":  "imaginary part",
	"rni": "real and imaginary part",
}

func init() {
	for _, prefix := range []string{"amp", "pha", "anp", "re", "im", "rni"} {
		qs, _ := quantity.ForPrefix(prefix)
		register(plotKind{
			name:        prefix + "time",
			description: quantityNames[prefix] + " versus time",
			needsData:   true,
			usesWeights: true,
			build:       func(p *plan) (rowReducer, error) { return newTimePlot(p, qs) },
		})
		register(plotKind{
			name:        prefix + "chan",
			description: quantityNames[prefix] + " versus channel",
			needsData:   true,
			usesWeights: true,
			build:       func(p *plan) (rowReducer, error) { return newChanPlot(p, qs, false) },
		})
		if prefix == "amp" || prefix == "pha" || prefix == "anp" {
			register(plotKind{
				name:        prefix + "freq",
				description: quantityNames[prefix] + " versus frequency",
				needsData:   true,
				needsFreqs:  true,
				usesWeights: true,
				build:       func(p *plan) (rowReducer, error) { return newChanPlot(p, qs, true) },
			})
		}
	}

	register(plotKind{
		name:        "wt",
		description: "weight versus time",
		needsWeight: true,
		usesWeights: true,
		build:       newWeightPlot,
	})
	register(plotKind{
		name:        "uv",
		description: "uv coverage",
		needsUVW:    true,
		build:       newUVPlot,
	})
	register(plotKind{
		name:        "ampuv",
		description: "amplitude versus uv distance",
		needsData:   true,
		needsFreqs:  true,
		needsUVW:    true,
		usesWeights: true,
		build:       newUVDistPlot,
	})
}

// Kinds returns the registered plot kinds in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Describe returns a one-line description of a plot kind.
func Describe(kind string) (string, bool) {
	k, ok := registry[kind]
	return k.description, ok
}
