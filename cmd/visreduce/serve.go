// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/visreduce/internal/api"
	"github.com/tomtom215/visreduce/internal/config"
	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/supervisor"
	"github.com/tomtom215/visreduce/internal/supervisor/services"
)

// storeGCInterval is how often the result store value log is compacted.
const storeGCInterval = time.Hour

func runServe(ctx context.Context, args []string, _ io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	defaults, err := cfg.ToSelection()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	if a.store != nil {
		tree.AddStoreService(services.NewStoreGCService(a.store, storeGCInterval, 0.5))
		logging.Info().Dur("interval", storeGCInterval).Msg("Result store GC service added to supervisor")
	}

	handler := api.NewHandler(a.engine, defaults, cfg.Server.Timeout)
	router := api.NewRouter(handler, api.NewChiMiddleware(middlewareConfig(cfg.Server)))
	server := newHTTPServer(cfg.Server, router.Setup())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	logging.Info().
		Str("addr", server.Addr).
		Strs("plots", plotNames(a)).
		Msg("Starting supervisor tree...")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree error: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	logging.Info().Msg("Server stopped")
	return nil
}

func middlewareConfig(s config.ServerConfig) *api.ChiMiddlewareConfig {
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = append([]string(nil), s.CORSOrigins...)
	mw.RateLimitRequests = s.RateLimitReqs
	mw.RateLimitWindow = s.RateLimitWindow
	mw.RateLimitDisabled = s.RateLimitDisabled
	return mw
}

// newHTTPServer leaves room past the reduction timeout for the error
// response to be written.
func newHTTPServer(s config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func plotNames(a *app) []string {
	kinds := a.engine.Plots()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.Name
	}
	return out
}
