// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/visreduce/internal/reducer"
)

func runPlots(_ context.Context, _ []string, stdout io.Writer) error {
	for _, kind := range reducer.Kinds() {
		desc, _ := reducer.Describe(kind)
		if _, err := fmt.Fprintf(stdout, "%-10s %s\n", kind, desc); err != nil {
			return err
		}
	}
	return nil
}
