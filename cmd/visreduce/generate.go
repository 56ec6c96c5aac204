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
	"strconv"
	"strings"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/mapping"
	"github.com/tomtom215/visreduce/internal/source/duckdb"
	"github.com/tomtom215/visreduce/internal/source/synthetic"
)

func runGenerate(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file")
	antennas := fs.String("antennas", "Ef,Wb,Mc,On", "comma separated antenna names")
	fields := fs.String("fields", "3C84", "comma separated field names")
	times := fs.Int("times", 60, "number of timestamps")
	start := fs.Float64("start", 0, "first timestamp in seconds")
	interval := fs.Float64("interval", 2, "integration time in seconds")
	subbands := fs.String("subbands", "4.9e9,4.932e9", "comma separated subband start frequencies in Hz")
	channels := fs.Int("channels", 32, "channels per subband")
	chanStep := fs.Float64("chanstep", 0.5e6, "channel width in Hz")
	pols := fs.String("pols", "RR,LL", "comma separated correlation products")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	sb, err := parseFloats(*subbands)
	if err != nil {
		return fmt.Errorf("invalid -subbands: %w", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	tbl, md, err := synthetic.Generate(synthetic.Observation{
		Name:       cfg.Table.Name,
		Antennas:   splitList(*antennas),
		Fields:     splitList(*fields),
		Timestamps: *times,
		StartTime:  *start,
		Interval:   *interval,
		Subbands:   sb,
		Channels:   *channels,
		ChanStep:   *chanStep,
		Pols:       splitList(*pols),
	})
	if err != nil {
		return fmt.Errorf("failed to generate observation: %w", err)
	}

	nchan, npol := tbl.DataShape()
	if err := duckdb.Write(ctx, cfg.Table.Path, cfg.Table.Name, nchan, npol, tbl.Rows(), duckdbOptions(cfg)); err != nil {
		return err
	}
	if err := mapping.Save(cfg.Mapping.Path, md); err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}

	logging.Info().
		Str("table_path", cfg.Table.Path).
		Str("table", cfg.Table.Name).
		Str("mapping", cfg.Mapping.Path).
		Int("rows", len(tbl.Rows())).
		Msg("Synthetic observation written")
	_, err = fmt.Fprintf(stdout, "wrote %d rows to %s:%s\n", len(tbl.Rows()), cfg.Table.Path, cfg.Table.Name)
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFloats(s string) ([]float64, error) {
	parts := splitList(s)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
