// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package label turns raw series keys into semantic labels.
//
// A Builder resolves each axis of a Key through an optional unmapping
// function (baseline name, frequency group name, source name, time of day)
// and stores the resulting strings in a Label. Labels are comparable values,
// so two keys that resolve to the same strings yield equal labels.
package label

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Axis names one field of a label.
type Axis uint8

const (
	AxisType Axis = iota
	AxisBaseline
	AxisFreqGroup
	AxisSubband
	AxisSource
	AxisPol
	AxisChannel
	AxisTime
	numAxes
)

var axisNames = [numAxes]string{"TYPE", "BL", "FQ", "SB", "SRC", "P", "CH", "TIME"}

// String returns the short axis name.
func (a Axis) String() string {
	if a >= numAxes {
		return fmt.Sprintf("Axis(%d)", uint8(a))
	}
	return axisNames[a]
}

// ParseAxis is the inverse of Axis.String.
func ParseAxis(s string) (Axis, error) {
	for i, n := range axisNames {
		if strings.EqualFold(n, s) {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("unknown label axis %q", s)
}

// Averaged is the channel label of a channel-averaged series.
const Averaged = "*"

// Label is a resolved series identity.
type Label struct {
	values  [numAxes]string
	present uint16
}

// Get returns the value of an axis and whether the label carries it.
func (l Label) Get(a Axis) (string, bool) {
	if a >= numAxes || l.present&(1<<a) == 0 {
		return "", false
	}
	return l.values[a], true
}

// Axes returns the axes present in the label, in canonical order.
func (l Label) Axes() []Axis {
	var out []Axis
	for a := Axis(0); a < numAxes; a++ {
		if l.present&(1<<a) != 0 {
			out = append(out, a)
		}
	}
	return out
}

// Fields returns the label as an axis-name to value map.
func (l Label) Fields() map[string]string {
	out := make(map[string]string, numAxes)
	for _, a := range l.Axes() {
		out[a.String()] = l.values[a]
	}
	return out
}

// String renders the label as space separated AXIS=value pairs.
func (l Label) String() string {
	var sb strings.Builder
	for i, a := range l.Axes() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(a.String())
		sb.WriteByte('=')
		sb.WriteString(l.values[a])
	}
	return sb.String()
}

// Unmappers resolves raw indices to display names. Any nil function falls
// back to plain numeric formatting.
type Unmappers struct {
	Baseline  func(a1, a2 int) string
	FreqGroup func(fq int) string
	Source    func(field int) string
	Time      func(t float64) string
}

// Builder builds labels for one plot kind.
type Builder struct {
	axes []Axis
	un   Unmappers
}

// NewBuilder returns a builder that fills the given axes.
func NewBuilder(axes []Axis, un Unmappers) *Builder {
	return &Builder{axes: append([]Axis(nil), axes...), un: un}
}

// Axes returns the axes filled by the builder.
func (b *Builder) Axes() []Axis {
	return append([]Axis(nil), b.axes...)
}

// Build resolves k.
func (b *Builder) Build(k Key) Label {
	var l Label
	for _, a := range b.axes {
		l.values[a] = b.resolve(a, k)
		l.present |= 1 << a
	}
	return l
}

func (b *Builder) resolve(a Axis, k Key) string {
	switch a {
	case AxisType:
		return k.Quantity
	case AxisBaseline:
		if b.un.Baseline != nil {
			return b.un.Baseline(k.Baseline.A1, k.Baseline.A2)
		}
		return strconv.Itoa(k.Baseline.A1) + "-" + strconv.Itoa(k.Baseline.A2)
	case AxisFreqGroup:
		if b.un.FreqGroup != nil {
			return b.un.FreqGroup(k.FreqGroup)
		}
		return strconv.Itoa(k.FreqGroup)
	case AxisSubband:
		return strconv.Itoa(k.Subband)
	case AxisSource:
		if b.un.Source != nil {
			return b.un.Source(k.Field)
		}
		return strconv.Itoa(k.Field)
	case AxisPol:
		return k.Pol
	case AxisChannel:
		if k.Kind == KindAveraged {
			return Averaged
		}
		return strconv.Itoa(k.Channel)
	case AxisTime:
		if b.un.Time != nil {
			return b.un.Time(k.Time)
		}
		return FormatTime(k.Time)
	}
	return ""
}

// FormatTime renders seconds as day/HH:MM:SS.ss with centisecond
// precision. The day number keeps equal times of day on different days
// apart.
func FormatTime(t float64) string { return formatTime(t, 2) }

// MaxTimeDecimals is the finest time label precision, one microsecond.
const MaxTimeDecimals = 6

// TimeFormatter returns a formatter like FormatTime with the given number
// of fractional second digits, clamped to [0, MaxTimeDecimals].
func TimeFormatter(decimals int) func(float64) string {
	decimals = min(max(decimals, 0), MaxTimeDecimals)
	return func(t float64) string { return formatTime(t, decimals) }
}

// TimeDecimals is the number of fractional digits that keeps timestamps one
// integration time apart on distinct labels. It never goes below the
// centisecond precision of FormatTime.
func TimeDecimals(integration float64) int {
	if !(integration > 0) || math.IsInf(integration, 0) {
		return 2
	}
	d := int(math.Ceil(-math.Log10(integration) - 1e-9))
	return min(max(d, 2), MaxTimeDecimals)
}

func formatTime(t float64, decimals int) string {
	scale := int64(1)
	for range decimals {
		scale *= 10
	}
	u := int64(math.Round(t * float64(scale)))
	sign := ""
	if u < 0 {
		sign = "-"
		u = -u
	}
	perDay := 86_400 * scale
	day := u / perDay
	u %= perDay
	frac := u % scale
	secs := u / scale
	h, m, sec := secs/3600, secs/60%60, secs%60
	if decimals == 0 {
		return fmt.Sprintf("%s%d/%02d:%02d:%02d", sign, day, h, m, sec)
	}
	return fmt.Sprintf("%s%d/%02d:%02d:%02d.%0*d", sign, day, h, m, sec, decimals, frac)
}
