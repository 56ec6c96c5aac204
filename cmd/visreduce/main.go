// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package main is the visreduce command line.
//
// Visreduce streams the rows of a DuckDB visibility table in chunks and
// reduces them into labeled (x, y, mask) datasets for one plot kind.
//
// # Commands
//
//	visreduce reduce   -plot amptime [-config FILE] [-mark EXPR] [-o FILE]
//	visreduce serve    [-config FILE]
//	visreduce generate [-config FILE] [-antennas A,B,C] [-times N] ...
//	visreduce plots
//
// reduce runs a single reduction and writes the Reduction JSON to stdout or
// to -o. serve runs the HTTP API under a supervisor tree. generate writes a
// synthetic visibility table and its mapping file to the configured paths.
// plots lists the registered plot kinds.
//
// # Configuration
//
// Every command loads the same layered configuration (defaults, YAML file,
// environment). See package config for the keys.
//
// # Signal Handling
//
// reduce and serve stop on SIGINT and SIGTERM. A canceled reduction returns
// no datasets; serve drains in-flight requests before exiting.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/visreduce/internal/logging"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string, stdout io.Writer) error
}

var commands = []command{
	{"reduce", "run one reduction and print the datasets as JSON", runReduce},
	{"serve", "serve the HTTP API", runServe},
	{"generate", "write a synthetic visibility table and mapping file", runGenerate},
	{"plots", "list the registered plot kinds", runPlots},
}

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		logging.Error().Err(err).Msg("visreduce failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], stdout)
		}
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return nil
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
	printUsage(stderr)
	return errUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: visreduce <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.usage)
	}
}
