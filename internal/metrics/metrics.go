// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

// Package metrics defines Prometheus metrics for ViewLens.
//
// Metrics are registered with the default registry via promauto and
// exposed on /metrics by the API router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewlens_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewlens_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ViewingsRecorded counts viewing events accepted into the ledger.
	ViewingsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewlens_viewings_recorded_total",
			Help: "Total number of viewing events recorded",
		},
	)

	// ViewingsRejected counts viewing events dropped before recording.
	ViewingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewlens_viewings_rejected_total",
			Help: "Total number of viewing events rejected",
		},
		[]string{"reason"},
	)

	// RecommendationRequests counts recommendation queries served.
	RecommendationRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewlens_recommendation_requests_total",
			Help: "Total number of recommendation requests served",
		},
	)

	// ScoreCacheHits counts similarity score cache hits.
	ScoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewlens_score_cache_hits_total",
			Help: "Total number of score cache hits",
		},
	)

	// ScoreCacheMisses counts similarity score cache misses.
	ScoreCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewlens_score_cache_misses_total",
			Help: "Total number of score cache misses",
		},
	)

	// PersistenceErrors counts failed writes to the durable store.
	PersistenceErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewlens_persistence_errors_total",
			Help: "Total number of failed durable store writes",
		},
	)

	// HistorySize tracks the current viewing history ledger length.
	HistorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viewlens_history_size",
			Help: "Current number of entries in the viewing history ledger",
		},
	)
)
