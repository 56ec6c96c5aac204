// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package models

import (
	"time"
)

// APIResponse is the envelope of every HTTP response.
//
// Status is "success" with Data set, or "error" with Error set.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"plot": "amptime", "series": [...]},
//	  "metadata": {
//	    "timestamp": "2026-10-17T12:00:00Z",
//	    "query_time_ms": 45,
//	    "cached": false
//	  }
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and caching information of a response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes: VALIDATION_ERROR, CONFIGURATION_ERROR, CONSISTENCY_ERROR,
// UNSUPPORTED_COLUMN, RATE_LIMITED, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Table   string  `json:"table"`
	Plots   int     `json:"plots"`
	Uptime  float64 `json:"uptime_seconds"`
}
