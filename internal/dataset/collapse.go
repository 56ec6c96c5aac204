// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package dataset

import "github.com/tomtom215/visreduce/internal/cube"

// CollapseX replaces all points sharing an x value by their mean, in
// first-seen x order. Only unflagged points contribute and the result is
// unflagged; a bucket holding only flagged points becomes one flagged point
// with the mean of all its values.
func (d *Dataset[T]) CollapseX() {
	type bucket struct {
		good, all T
		nGood     int
		nAll      int
	}

	order := make([]float64, 0, len(d.x))
	buckets := make(map[float64]*bucket, len(d.x))
	for i, x := range d.x {
		b, ok := buckets[x]
		if !ok {
			b = &bucket{}
			buckets[x] = b
			order = append(order, x)
		}
		b.all += d.y[i]
		b.nAll++
		if !d.mask[i] {
			b.good += d.y[i]
			b.nGood++
		}
	}

	if len(order) == len(d.x) {
		return
	}

	x := make([]float64, len(order))
	y := make([]T, len(order))
	mask := make([]bool, len(order))
	for i, xv := range order {
		b := buckets[xv]
		x[i] = xv
		if b.nGood > 0 {
			y[i] = cube.DivN(b.good, b.nGood)
			continue
		}
		y[i] = cube.DivN(b.all, b.nAll)
		mask[i] = true
	}
	d.x, d.y, d.mask = x, y, mask
}
