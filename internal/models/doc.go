// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package models defines the JSON payloads exchanged by the CLI, the HTTP API
and the result store.

Key Components:

  - ReduceRequest: plot kind, selection and optional mark expression
  - Reduction: the labeled series of one run plus its run summary
  - Series: one (x, y, mask) dataset with its label fields
  - APIResponse: standard response envelope of every HTTP endpoint

All types are encoded with github.com/goccy/go-json.
*/
package models
