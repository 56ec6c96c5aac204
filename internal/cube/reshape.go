// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package cube

import (
	"errors"
	"fmt"
)

// ErrShape is returned when a raw cube cannot be reconciled with the
// expected (rows, chans, pols) extent.
var ErrShape = errors.New("cube shape mismatch")

// Reshape3D restores the canonical rank of dims by inserting degenerate axes,
// matching from the last axis backwards. Table backends drop axes of extent 1
// (single polarization, single channel, or a one-row chunk), so a
// (rows, chans) block of single-pol data comes back as (rows, chans, 1).
func Reshape3D(dims []int, want Shape) ([3]int, error) {
	full := [3]int{want.Rows, want.Chans, want.Pols}
	var out [3]int

	j := len(dims) - 1
	for i := 2; i >= 0; i-- {
		switch {
		case j >= 0 && dims[j] == full[i]:
			out[i] = dims[j]
			j--
		case full[i] == 1:
			out[i] = 1
		default:
			return out, fmt.Errorf("%w: dims %v cannot be reshaped to %s", ErrShape, dims, want)
		}
	}
	if j >= 0 {
		return out, fmt.Errorf("%w: dims %v have more axes than %s", ErrShape, dims, want)
	}
	return out, nil
}

func checkDims(dims []int, want Shape) error {
	if len(dims) > 3 {
		return fmt.Errorf("%w: rank %d", ErrShape, len(dims))
	}
	_, err := Reshape3D(dims, want)
	return err
}
