// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package config loads the visreduce configuration.

Configuration is layered with koanf: struct defaults, then an optional YAML
file, then environment variables. Later layers win.

# Configuration File

The file is taken from CONFIG_PATH, otherwise the first of config.yaml,
config.yml, /etc/visreduce/config.yaml and /etc/visreduce/config.yml that
exists. Example:

	table:
	  path: /data/obs.duckdb
	  name: visibilities
	  chunk_size: 5000
	mapping:
	  path: /data/obs.mapping.json
	selection:
	  channels: [0, 1, 2, 3]
	  average_channel: vector
	  solint: 1m30s
	  weight_threshold: 0.5
	cache:
	  enabled: true
	  path: /data/results

# Environment Variables

Only the variables in the mapping table are read; everything else in the
environment is ignored. Highlights:
  - TABLE_PATH, TABLE_NAME, CHUNK_SIZE, READ_FLAGS, DATA_COLUMN
  - MAPPING_PATH
  - CHANNELS, TIME_RANGES: comma-separated lists
  - AVERAGE_CHANNEL, AVERAGE_TIME: none, scalar, vector, vectornorm
  - SOLINT: duration with d/h/m/s units, e.g. "1m30s" or "0.5s"
  - WEIGHT_THRESHOLD, MARK
  - CACHE_ENABLED, CACHE_PATH, CACHE_TTL
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - CORS_ORIGINS: comma-separated origins allowed to call the API
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Selection

Solint values must carry a unit; a bare number is rejected so that "30"
cannot silently mean seconds or minutes. Time ranges are written
"start:end" in seconds of the table's time axis. Solint and time ranges are
mutually exclusive.
*/
package config
