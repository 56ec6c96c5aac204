// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/visreduce/internal/logging"
)

// HTTPServer is the lifecycle subset of *http.Server. Tests substitute a
// double that never binds a socket.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the reduction API server under the supervisor.
//
// ListenAndServe blocks, so Serve runs it in a goroutine and waits for
// either a server failure or cancellation of the supervisor context. On
// cancellation the server stops accepting connections and in-flight
// reductions get shutdownTimeout to finish writing their responses. Keep
// that timeout at or above the server's write timeout if long reductions
// should survive a restart.
//
// Example:
//
//	server := &http.Server{Addr: ":8422", Handler: router.Setup()}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	addr            string
	name            string
}

// NewHTTPServerService wraps server. A non-positive timeout means 10s.
// When server is an *http.Server its address is logged on start and stop.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	svc := &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "reduction-api",
	}
	if s, ok := server.(*http.Server); ok {
		svc.addr = s.Addr
	}
	return svc
}

// Serve implements suture.Service.
//
// It returns ctx.Err() after a graceful shutdown so the supervisor does not
// restart the server, and a wrapped error when the server fails to bind or
// to shut down in time. http.ErrServerClosed is the normal result of
// Shutdown and is not reported.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logging.Info().Str("service", h.name).Str("addr", h.addr).Msg("Reduction API listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("reduction API server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled, so shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		start := time.Now()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("reduction API shutdown failed: %w", err)
		}
		<-errCh
		logging.Info().Str("service", h.name).Dur("took", time.Since(start)).Msg("Reduction API stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer.
func (h *HTTPServerService) String() string {
	return h.name
}
