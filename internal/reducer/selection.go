// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package reducer

import (
	"github.com/tomtom215/visreduce/internal/average"
	"github.com/tomtom215/visreduce/internal/source"
)

// MinChannelSolint is the shortest solint accepted by the channel plots,
// in seconds.
const MinChannelSolint = 0.1

// DDSelection selects one data description and, optionally, a subset of
// its polarization products by index. Empty Products selects them all.
type DDSelection struct {
	FreqGroup int   `json:"freq_group"`
	Subband   int   `json:"subband"`
	PolID     int   `json:"pol_id"`
	Products  []int `json:"products,omitempty"`
}

// Selection is everything a run needs to know besides the plot kind.
type Selection struct {
	// Channels are absolute channel numbers. Empty selects every channel.
	Channels []int `json:"channels,omitempty"`
	// DataDescriptions restricts the run. Empty selects every data
	// description with all its polarizations.
	DataDescriptions []DDSelection `json:"data_descriptions,omitempty"`

	AverageChannel average.Policy `json:"average_channel"`
	AverageTime    average.Policy `json:"average_time"`
	// Solint is the time bucket width in seconds.
	Solint     *float64        `json:"solint,omitempty"`
	TimeRanges []average.Range `json:"time_ranges,omitempty"`

	WeightThreshold *float64 `json:"weight_threshold,omitempty"`

	// DataColumn is DATA (default) or LAG_DATA.
	DataColumn string `json:"data_column,omitempty"`
	// ReadFlags folds FLAG and FLAG_ROW into the mask.
	ReadFlags bool `json:"read_flags"`
	ChunkSize int  `json:"chunk_size,omitempty"`
}

func (s Selection) dataColumn() string {
	if s.DataColumn == "" {
		return source.ColData
	}
	return s.DataColumn
}

func (s Selection) chunkSize() int {
	if s.ChunkSize <= 0 {
		return source.DefaultChunkSize
	}
	return s.ChunkSize
}
