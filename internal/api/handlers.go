// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/models"
	"github.com/tomtom215/visreduce/internal/reducer"
)

// maxRequestBody bounds a reduce request body.
const maxRequestBody = 1 << 20

// Version is reported by the health endpoint.
var Version = "dev"

// Producer produces reductions; *engine.Engine satisfies it.
type Producer interface {
	Produce(ctx context.Context, req models.ReduceRequest) (*models.Reduction, error)
	Plots() []models.PlotKind
	Table() string
}

// Handler holds the HTTP handlers.
type Handler struct {
	producer  Producer
	defaults  reducer.Selection
	timeout   time.Duration
	startTime time.Time
}

// NewHandler creates the handlers. defaults fill selection fields a request
// leaves out; timeout bounds one reduction (zero means none).
func NewHandler(producer Producer, defaults reducer.Selection, timeout time.Duration) *Handler {
	return &Handler{
		producer:  producer,
		defaults:  defaults,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Health reports liveness and the table being served.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:  "healthy",
			Version: Version,
			Table:   h.producer.Table(),
			Plots:   len(h.producer.Plots()),
			Uptime:  time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Plots lists the registered plot kinds.
func (h *Handler) Plots(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.producer.Plots(),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Reduce produces the datasets of one plot.
func (h *Handler) Reduce(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := models.ReduceRequest{Selection: cloneSelection(h.defaults)}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error(), nil)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	ctx := logging.ContextWithNewRunID(r.Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	out, err := h.producer.Produce(ctx, req)
	if err != nil {
		status, code := reductionStatus(err)
		respondErrorDetails(w, status, code, err.Error(), map[string]interface{}{
			"plot":   req.Plot,
			"run_id": logging.RunIDFromContext(ctx),
		}, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   out,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      out.Cached,
			RunID:       out.RunID,
		},
	})
}
