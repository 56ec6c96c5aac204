// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/models"
	"github.com/tomtom215/visreduce/internal/reducer"
)

func runReduce(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("reduce", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (default: search "+strings.Join(configSearchHint, ", ")+")")
	plot := fs.String("plot", "", "plot kind, one of: "+strings.Join(reducer.Kinds(), ", "))
	mark := fs.String("mark", "", "marker expression, overrides selection.mark")
	out := fs.String("o", "", "output file (default stdout)")
	indent := fs.Bool("indent", false, "indent the JSON output")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *plot == "" {
		fs.Usage()
		return errUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	sel, err := cfg.ToSelection()
	if err != nil {
		return err
	}
	req := models.ReduceRequest{Plot: *plot, Selection: sel, Mark: cfg.Selection.Mark}
	if *mark != "" {
		req.Mark = *mark
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = logging.ContextWithNewRunID(ctx)
	red, err := a.engine.Produce(ctx, req)
	if err != nil {
		return fmt.Errorf("%s reduction failed (%s): %w", *plot, reducer.Kind(err), err)
	}

	if *out == "" {
		return writeReduction(stdout, red, *indent)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeReduction(f, red, *indent); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	logging.Info().
		Str("output", *out).
		Int("series", len(red.Series)).
		Bool("cached", red.Cached).
		Msg("Reduction written")
	return nil
}

func writeReduction(w io.Writer, red *models.Reduction, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(red); err != nil {
		return fmt.Errorf("failed to encode reduction: %w", err)
	}
	return nil
}

var configSearchHint = []string{"$CONFIG_PATH", "config.yaml", "/etc/visreduce/config.yaml"}
