// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package label

// Baseline is an antenna pair.
type Baseline struct {
	A1 int
	A2 int
}

// AxisKind discriminates the trailing axis value of a Key.
type AxisKind uint8

const (
	// KindNone means the key has no trailing axis value.
	KindNone AxisKind = iota
	// KindChannel means Key.Channel holds a channel number.
	KindChannel
	// KindAveraged means the channel axis was averaged away.
	KindAveraged
	// KindTime means Key.Time holds a (binned) timestamp.
	KindTime
)

// Key is the raw, index-valued identity of one series. It is comparable and
// used directly as the accumulator map key; fields irrelevant to a plot
// kind stay at their zero value.
type Key struct {
	Quantity  string
	Baseline  Baseline
	FreqGroup int
	Subband   int
	Field     int
	Pol       string
	Kind      AxisKind
	Channel   int
	Time      float64
}

// WithQuantity returns a copy of k with the quantity replaced.
func (k Key) WithQuantity(q string) Key {
	k.Quantity = q
	return k
}
