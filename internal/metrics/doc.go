// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package metrics exposes Prometheus instrumentation for Visreduce.

Metric Categories:

Reduction:
  - reduce_runs_total{plot,outcome}: Completed and failed runs
  - reduce_chunks_total{plot}: Chunks handed to a reducer
  - reduce_rows_total{plot}: Rows handed to a reducer
  - reduce_weight_rejections_total{plot}: Contributions dropped by the weight threshold
  - reduce_duration_seconds{plot}: Wall time of a run
  - reduce_datasets{plot}: Datasets produced by the last run
  - reduce_errors_total{plot,kind}: Failed runs by error kind

Result Store:
  - result_store_hits_total / result_store_misses_total
  - result_store_errors_total{operation}

API:
  - api_requests_total{method,endpoint,status}
  - api_request_duration_seconds{method,endpoint}
  - api_rate_limit_hits_total{endpoint}

All metrics are registered with the default registry through promauto and
served by the /metrics endpoint of the HTTP API.
*/
package metrics
