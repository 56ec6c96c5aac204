// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package duckdb

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cube cells are stored as little-endian BLOBs, channel-major
// (index = ch*npol + pol): complex64 as two float32, weights as float32,
// flags as one byte each.

func encodeComplex(v []complex64) []byte {
	b := make([]byte, 8*len(v))
	for i, c := range v {
		binary.LittleEndian.PutUint32(b[8*i:], math.Float32bits(real(c)))
		binary.LittleEndian.PutUint32(b[8*i+4:], math.Float32bits(imag(c)))
	}
	return b
}

func decodeComplex(b []byte, n int) ([]complex64, error) {
	if len(b) != 8*n {
		return nil, fmt.Errorf("complex blob: %d bytes for %d cells", len(b), n)
	}
	out := make([]complex64, n)
	for i := range out {
		re := math.Float32frombits(binary.LittleEndian.Uint32(b[8*i:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(b[8*i+4:]))
		out[i] = complex(re, im)
	}
	return out, nil
}

func encodeFloat(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeFloat(b []byte, n int) ([]float32, error) {
	if len(b) != 4*n {
		return nil, fmt.Errorf("float blob: %d bytes for %d cells", len(b), n)
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

func encodeBool(v []bool) []byte {
	b := make([]byte, len(v))
	for i, f := range v {
		if f {
			b[i] = 1
		}
	}
	return b
}

func decodeBool(b []byte, n int) ([]bool, error) {
	if len(b) != n {
		return nil, fmt.Errorf("flag blob: %d bytes for %d cells", len(b), n)
	}
	out := make([]bool, n)
	for i, v := range b {
		out[i] = v != 0
	}
	return out, nil
}
