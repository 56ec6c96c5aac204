// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package cube

// Number is the element type of anything that can be averaged: derived real
// quantities or raw complex visibilities.
type Number interface {
	float64 | complex128
}

// DivN divides v by a sample count.
func DivN[T Number](v T, n int) T {
	switch x := any(v).(type) {
	case float64:
		return any(x / float64(n)).(T)
	case complex128:
		return any(x / complex(float64(n), 0)).(T)
	}
	return v
}
