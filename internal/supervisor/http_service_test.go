// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/cache"
	"github.com/basketwise/basketwise/internal/engagement"
)

// fakeServer mimics *http.Server lifecycle for the service wrapper.
type fakeServer struct {
	listenErr   error
	shutdownErr error

	closed chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{closed: make(chan struct{})}
}

func (s *fakeServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.closed
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(_ context.Context) error {
	close(s.closed)
	return s.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	server := newFakeServer()
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	server := newFakeServer()
	server.listenErr = errors.New("address in use")
	svc := NewHTTPService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve = %v, want wrapped listen error", err)
	}
}

func TestHTTPServiceShutdownFailure(t *testing.T) {
	server := newFakeServer()
	server.shutdownErr = errors.New("hung connections")
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	if err == nil || !errors.Is(err, server.shutdownErr) {
		t.Errorf("Serve = %v, want wrapped shutdown error", err)
	}
}

func TestHTTPServiceDefaultTimeout(t *testing.T) {
	svc := NewHTTPService(newFakeServer(), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want 10s default", svc.shutdownTimeout)
	}
}

type nopEngagementStore struct{}

func (nopEngagementStore) Apply(_ context.Context, _ engagement.Surface, _ string, _ engagement.Viewer, _ func(*engagement.Record) bool) error {
	return nil
}

func (nopEngagementStore) Count(_ context.Context, _ engagement.Filter) (engagement.Counts, error) {
	return engagement.Counts{}, nil
}

func TestPipelineServiceStopsOnCancel(t *testing.T) {
	tracker := engagement.NewTracker(nopEngagementStore{}, cache.NewNop(), zerolog.Nop())
	pipeline := engagement.NewPipeline(tracker, 4, zerolog.Nop())
	defer pipeline.Close()

	svc := NewPipelineService(pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline service did not stop after cancel")
	}
}
