// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package supervisor runs the long-lived parts of `visreduce serve` under a
suture v4 supervisor tree.

# Overview

	RootSupervisor ("visreduce")
	├── StoreSupervisor ("store-layer")
	│   └── StoreGCService (if the result store is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed service is restarted with suture's backoff. Store maintenance
failures never take the API down.

# Logging

Supervisor events go through sutureslog into a *slog.Logger, normally
logging.NewSlogLogger() so they land in the zerolog stream:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddStoreService(services.NewStoreGCService(store, time.Hour, 0.5))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
