// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package api serves reductions to plotting front-ends over HTTP.

# Endpoints

	GET  /api/v1/health   liveness, uptime and the table being served
	GET  /api/v1/plots    registered plot kinds with descriptions
	POST /api/v1/reduce   produce the labeled datasets of one plot
	GET  /metrics         Prometheus metrics

Every JSON response uses the models.APIResponse envelope. A reduce request
body is a models.ReduceRequest; selection fields it leaves out take the
server's configured defaults:

	{
	  "plot": "ampchan",
	  "selection": {"channels": [0, 1, 2], "average_time": "vector", "solint": 30},
	  "mark": "y > avg + 3*sd"
	}

# Errors

Reduction failures map to codes by kind:

	configuration       400 CONFIGURATION_ERROR
	unsupported_column  400 UNSUPPORTED_COLUMN
	consistency         422 CONSISTENCY_ERROR
	canceled            503 REQUEST_CANCELED
	other               500 INTERNAL_ERROR

# Middleware

Routes run behind chi's RealIP and Recoverer, a request ID that is also put
on the logging context, go-chi/cors for configured origins, go-chi/httprate
per client IP on /api/v1, and a Prometheus middleware labeled by route
pattern.
*/
package api
