// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

// Command server runs the ViewLens recommendation service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"

	"github.com/viewlens/viewlens/internal/api"
	"github.com/viewlens/viewlens/internal/config"
	"github.com/viewlens/viewlens/internal/logging"
	"github.com/viewlens/viewlens/internal/recommend"
	"github.com/viewlens/viewlens/internal/recommend/storage"
	"github.com/viewlens/viewlens/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default: search standard locations)")
	flag.Parse()

	manager, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := manager.Config()

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().
		Str("config", manager.Path()).
		Str("storage", cfg.Storage.Path).
		Msg("starting viewlens")

	store, err := storage.NewBadgerStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing storage failed")
		}
	}()

	svc, err := recommend.NewService(recommend.ServiceConfig{
		Settings: cfg.Recommendations,
		Store:    store,
		Provider: manager,
		Logger:   logging.Logger(),
	})
	if err != nil {
		return fmt.Errorf("create recommendation service: %w", err)
	}

	router := api.NewRouter(api.NewHandler(svc), api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree := suture.NewSimple("viewlens")
	tree.Add(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("http server listening")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("shutdown complete")
	return nil
}
