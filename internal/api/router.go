// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the HTTP middleware settings.
type RouterConfig struct {
	// CORSOrigins lists the allowed cross-origin hosts.
	CORSOrigins []string

	// RateLimitRequests is the number of requests allowed per IP per window.
	// Zero disables rate limiting.
	RateLimitRequests int

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration
}

// NewRouter builds the Chi router with the full middleware stack and
// all recommendation routes.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimitRequests > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, window))
	}

	r.Get("/healthz", handler.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/history", func(r chi.Router) {
			r.Post("/", handler.RecordViewing)
			r.Get("/", handler.GetHistory)
			r.Delete("/", handler.ClearHistory)
			r.Get("/top", handler.GetTopWatched)
			r.Get("/{channelID}/stats", handler.GetChannelStats)
		})
		r.Post("/recommendations", handler.GetRecommendations)
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", handler.GetSettings)
			r.Put("/", handler.UpdateSettings)
		})
		r.Get("/status", handler.GetStatus)
	})

	return r
}
