// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/visreduce/internal/metrics"
)

type mockCollector struct {
	calls atomic.Int32
	ratio atomic.Value
	err   error
}

func (m *mockCollector) RunGC(discardRatio float64) error {
	m.calls.Add(1)
	m.ratio.Store(discardRatio)
	return m.err
}

func TestStoreGCService_Interface(t *testing.T) {
	var _ suture.Service = (*StoreGCService)(nil)
	var _ GarbageCollector = (*mockCollector)(nil)
}

func TestNewStoreGCService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewStoreGCService(&mockCollector{}, 0, 1.5)
	if svc.interval != time.Hour {
		t.Errorf("expected default interval 1h, got %v", svc.interval)
	}
	if svc.discardRatio != 0.5 {
		t.Errorf("expected default ratio 0.5, got %v", svc.discardRatio)
	}
	if svc.String() != "result-store-gc" {
		t.Errorf("unexpected name %q", svc.String())
	}
}

func TestStoreGCService_Serve(t *testing.T) {
	store := &mockCollector{err: errors.New("disk full")}
	svc := NewStoreGCService(store, 10*time.Millisecond, 0.7)
	before := testutil.ToFloat64(metrics.ResultStoreErrors.WithLabelValues("gc"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for store.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if n := store.calls.Load(); n < 2 {
		t.Fatalf("a failed pass should not stop the service, got %d calls", n)
	}
	if r, _ := store.ratio.Load().(float64); r != 0.7 {
		t.Errorf("expected ratio 0.7, got %v", r)
	}
	if got := testutil.ToFloat64(metrics.ResultStoreErrors.WithLabelValues("gc")) - before; got < 2 {
		t.Errorf("expected gc errors to be counted, delta %v", got)
	}
}
