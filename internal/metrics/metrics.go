// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reduction Metrics
	ReduceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reduce_runs_total",
			Help: "Total number of reduction runs",
		},
		[]string{"plot", "outcome"}, // "ok", "error", "cached"
	)

	ReduceChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reduce_chunks_total",
			Help: "Total number of row chunks reduced",
		},
		[]string{"plot"},
	)

	ReduceRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reduce_rows_total",
			Help: "Total number of table rows reduced",
		},
		[]string{"plot"},
	)

	ReduceWeightRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reduce_weight_rejections_total",
			Help: "Total number of contributions rejected by the weight threshold",
		},
		[]string{"plot"},
	)

	ReduceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reduce_duration_seconds",
			Help:    "Wall time of a reduction run in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"plot"},
	)

	ReduceDatasets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reduce_datasets",
			Help: "Number of datasets produced by the most recent run",
		},
		[]string{"plot"},
	)

	ReduceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reduce_errors_total",
			Help: "Total number of failed reduction runs by error kind",
		},
		[]string{"plot", "kind"}, // "configuration", "consistency", "unsupported_column", "canceled", "other"
	)

	// Result Store Metrics
	ResultStoreHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_store_hits_total",
			Help: "Total number of reductions served from the result store",
		},
	)

	ResultStoreMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_store_misses_total",
			Help: "Total number of result store lookups that required a reduction",
		},
	)

	ResultStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_store_errors_total",
			Help: "Total number of result store failures",
		},
		[]string{"operation"}, // "get", "put"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

// RecordChunk records one reduced chunk.
func RecordChunk(plot string, rows int) {
	ReduceChunks.WithLabelValues(plot).Inc()
	ReduceRows.WithLabelValues(plot).Add(float64(rows))
}

// RecordRun records a finished reduction run. errKind is empty on success.
func RecordRun(plot string, duration time.Duration, datasets int, rejected int64, errKind string) {
	ReduceDuration.WithLabelValues(plot).Observe(duration.Seconds())
	if errKind != "" {
		ReduceRuns.WithLabelValues(plot, "error").Inc()
		ReduceErrors.WithLabelValues(plot, errKind).Inc()
		return
	}
	ReduceRuns.WithLabelValues(plot, "ok").Inc()
	ReduceDatasets.WithLabelValues(plot).Set(float64(datasets))
	if rejected > 0 {
		ReduceWeightRejections.WithLabelValues(plot).Add(float64(rejected))
	}
}

// RecordCached records a run answered from the result store.
func RecordCached(plot string) {
	ReduceRuns.WithLabelValues(plot, "cached").Inc()
	ResultStoreHits.Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
