// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package services adapts visreduce components to suture.Service.
//
//   - HTTPServerService turns ListenAndServe/Shutdown into a context-aware
//     Serve with graceful shutdown.
//   - StoreGCService periodically reclaims result store value log space.
//
// Each service implements fmt.Stringer so suture can name it in events.
package services
