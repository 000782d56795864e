// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// fakeServer simulates *http.Server lifecycle behavior.
type fakeServer struct {
	serveErr    error
	shutdownErr error

	started  chan struct{}
	release  chan struct{}
	shutdown chan struct{}
}

func newFakeServer(serveErr, shutdownErr error) *fakeServer {
	return &fakeServer{
		serveErr:    serveErr,
		shutdownErr: shutdownErr,
		started:     make(chan struct{}),
		release:     make(chan struct{}),
		shutdown:    make(chan struct{}, 1),
	}
}

func (f *fakeServer) ListenAndServe() error {
	close(f.started)
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.release
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(_ context.Context) error {
	f.shutdown <- struct{}{}
	close(f.release)
	return f.shutdownErr
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newFakeServer(nil, nil)
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	select {
	case <-server.shutdown:
	default:
		t.Error("Shutdown was never called")
	}
}

func TestHTTPServiceStartupFailure(t *testing.T) {
	t.Parallel()

	server := newFakeServer(errors.New("address in use"), nil)
	svc := NewHTTPService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || errors.Is(err, context.Canceled) {
		t.Errorf("a failed listen must surface as an error, got %v", err)
	}
}

func TestHTTPServiceShutdownFailure(t *testing.T) {
	t.Parallel()

	server := newFakeServer(nil, errors.New("hung connections"))
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.started
	cancel()

	select {
	case err := <-done:
		if err == nil || errors.Is(err, context.Canceled) {
			t.Errorf("a failed shutdown must surface as an error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestHTTPServiceDefaultTimeout(t *testing.T) {
	t.Parallel()

	svc := NewHTTPService(newFakeServer(nil, nil), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s default, got %s", svc.shutdownTimeout)
	}
}

func TestHTTPServiceString(t *testing.T) {
	t.Parallel()

	svc := NewHTTPService(newFakeServer(nil, nil), time.Second)
	if svc.String() != "http-server" {
		t.Errorf("unexpected name: %s", svc.String())
	}
}
