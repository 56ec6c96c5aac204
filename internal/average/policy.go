// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package average implements the two independent reducers of the pipeline:
// channel-axis averaging and time-axis binning.
//
// # Channel averaging
//
// Scalar averaging derives the real quantity per channel first and then takes
// the masked mean. Vector averaging takes the masked mean of the complex
// samples and derives quantities afterwards, so phase cancellation is
// preserved. VectorNorm unit-normalizes every sample before the vector mean.
// Both collapse the channel axis to a single bucket.
//
// # Time binning
//
// A TimeBinner remaps a timestamp to its bucket value. Rows that land in the
// same bucket end up under the same dataset key and are summed there; the
// final average is taken when the dataset is finalized.
package average

import (
	"fmt"
	"strings"
)

// Policy selects how samples along an axis are combined.
type Policy int

const (
	None Policy = iota
	Scalar
	Vector
	VectorNorm
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case None:
		return "none"
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	case VectorNorm:
		return "vectornorm"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// IsVector reports whether the policy averages complex samples.
func (p Policy) IsVector() bool {
	return p == Vector || p == VectorNorm
}

// ParsePolicy accepts the configuration spelling of a policy. An empty
// string means None.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "scalar":
		return Scalar, nil
	case "vector":
		return Vector, nil
	case "vectornorm", "vector_norm":
		return VectorNorm, nil
	default:
		return None, fmt.Errorf("unknown averaging policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
