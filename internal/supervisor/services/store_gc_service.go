// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package services

import (
	"context"
	"time"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/metrics"
)

// GarbageCollector is satisfied by *resultstore.Store.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// StoreGCService runs value log GC on the result store every interval.
// A failed pass is logged and counted; the service keeps running.
type StoreGCService struct {
	store        GarbageCollector
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewStoreGCService creates the service. Zero values fall back to one hour
// and a discard ratio of 0.5.
func NewStoreGCService(store GarbageCollector, interval time.Duration, discardRatio float64) *StoreGCService {
	if interval <= 0 {
		interval = time.Hour
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &StoreGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		name:         "result-store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(s.discardRatio); err != nil {
				metrics.ResultStoreErrors.WithLabelValues("gc").Inc()
				logging.Warn().Err(err).Msg("Result store GC failed")
				continue
			}
			logging.Debug().Dur("took", time.Since(start)).Msg("Result store GC finished")
		}
	}
}

// String implements fmt.Stringer.
func (s *StoreGCService) String() string {
	return s.name
}
