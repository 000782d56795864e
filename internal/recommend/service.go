// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/viewlens/viewlens/internal/metrics"
)

// ErrStateNotFound is returned by Store.Load when no document has been
// persisted yet.
var ErrStateNotFound = errors.New("recommendation state not found")

// Service is the public façade of the recommendation subsystem. It owns
// the viewing history ledger, the channel metadata table and the score
// cache, and is their sole mutator.
//
// Every public operation is total: it returns a well-typed result in all
// cases, including persistence failure, and never panics into the host.
// Mutating calls are serialized by a single mutex; reads proceed
// concurrently against a consistent snapshot.
type Service struct {
	mu       sync.RWMutex
	settings Settings
	ledger   ledger
	metadata map[string]ChannelMetadata

	cache    *scoreCache
	store    Store
	provider SettingsProvider
	clock    Clock
	logger   zerolog.Logger

	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	persistErrors atomic.Int64
}

// ServiceConfig carries the collaborators injected at construction.
type ServiceConfig struct {
	// Settings is the initial `recommendations` configuration block.
	Settings Settings

	// Store is the durable document store. Required.
	Store Store

	// Provider persists settings updates. Optional; when nil,
	// UpdateSettings applies changes in memory but reports failure.
	Provider SettingsProvider

	// Clock drives calendar-day bucketing and recency math.
	// Defaults to the system clock.
	Clock Clock

	// Logger is the structured log sink.
	Logger zerolog.Logger
}

// NewService constructs the recommendation service and loads persisted
// state. A load failure is not fatal: the service starts empty and
// re-persists an initial document.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}

	s := &Service{
		settings: cfg.Settings,
		metadata: make(map[string]ChannelMetadata),
		cache:    newScoreCache(),
		store:    cfg.Store,
		provider: cfg.Provider,
		clock:    cfg.Clock,
		logger:   cfg.Logger.With().Str("component", "recommend").Logger(),
	}

	s.loadState(context.Background())
	return s, nil
}

// loadState restores the ledger and metadata from the durable store, or
// initializes and persists an empty document when none exists.
func (s *Service) loadState(ctx context.Context) {
	doc, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, ErrStateNotFound):
		s.logger.Info().Msg("no stored state, starting with empty history")
		s.persistLocked(ctx)
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("loading state failed, resetting to empty history")
		s.persistLocked(ctx)
		return
	}

	s.ledger.entries = doc.History
	if doc.ChannelMetadata != nil {
		s.metadata = doc.ChannelMetadata
	}

	// Persisted state may predate the current limit or ordering rules.
	s.ledger.sortRecentFirst()
	s.ledger.truncate(s.settings.HistoryLimit)
	metrics.HistorySize.Set(float64(s.ledger.len()))

	s.logger.Info().
		Int("entries", s.ledger.len()).
		Int("channels", len(s.metadata)).
		Msg("loaded viewing history")
}

// RecordViewing records a completed viewing session for the channel.
// Returns true when the in-memory ledger was updated, independent of
// whether the durable write succeeded.
func (s *Service) RecordViewing(channel Channel, durationSeconds int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.Enabled {
		return false
	}
	if channel.ID == "" {
		s.logger.Warn().Str("title", channel.Title).Msg("viewing event dropped: channel has no id")
		metrics.ViewingsRejected.WithLabelValues("missing_id").Inc()
		return false
	}
	if durationSeconds < int64(s.settings.MinViewTimeSeconds) {
		s.logger.Debug().
			Str("channel_id", channel.ID).
			Int64("duration_s", durationSeconds).
			Msg("viewing event below minimum view time")
		metrics.ViewingsRejected.WithLabelValues("below_min_view_time").Inc()
		return false
	}

	now := s.clock.Now()
	s.ledger.record(channel, durationSeconds, now)
	s.metadata[channel.ID] = mergeMetadata(s.metadata[channel.ID], channel)
	s.ledger.truncate(s.settings.HistoryLimit)
	s.cache.clear()

	metrics.ViewingsRecorded.Inc()
	metrics.HistorySize.Set(float64(s.ledger.len()))

	s.persistLocked(context.Background())

	s.logger.Debug().
		Str("channel_id", channel.ID).
		Int64("duration_s", durationSeconds).
		Int("entries", s.ledger.len()).
		Msg("viewing recorded")
	return true
}

// GetRecommendations scores every candidate channel against the recent
// viewing window and returns the top candidates, best first. The channel
// matching currentChannelID and candidates without an id are skipped.
func (s *Service) GetRecommendations(allChannels []Channel, currentChannelID string) []ScoredChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.requestCount.Add(1)
	metrics.RecommendationRequests.Inc()

	if !s.settings.Enabled || s.ledger.len() == 0 {
		return []ScoredChannel{}
	}

	now := s.clock.Now()
	window := s.ledger.window(scoringWindowSize)

	scored := make([]ScoredChannel, 0, len(allChannels))
	for _, ch := range allChannels {
		if ch.ID == "" || ch.ID == currentChannelID {
			continue
		}
		scored = append(scored, ScoredChannel{
			Channel: ch,
			Score:   s.scoreChannel(ch, window, now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > s.settings.MaxRecommendations {
		scored = scored[:s.settings.MaxRecommendations]
	}
	return scored
}

// scoreChannel consults the score cache, computing and storing on miss.
func (s *Service) scoreChannel(ch Channel, window []ViewingHistoryEntry, now time.Time) float64 {
	key := scoreKey{
		channelID:    ch.ID,
		windowSize:   len(window),
		newestViewed: window[0].LastViewed,
	}

	if score, ok := s.cache.get(key); ok {
		s.cacheHits.Add(1)
		metrics.ScoreCacheHits.Inc()
		return score
	}
	s.cacheMisses.Add(1)
	metrics.ScoreCacheMisses.Inc()

	score := similarityScore(ch, window, s.settings.RecommendationFactors, now)
	s.cache.put(key, score)
	return score
}

// GetViewingHistory returns a defensive copy of the ledger, most recent
// first, optionally truncated to limit entries. A non-positive limit
// returns the full ledger.
func (s *Service) GetViewingHistory(limit int) []ViewingHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.copyEntries(limit)
}

// GetChannelStatistics aggregates every ledger entry for the channel.
// Returns nil when the channel has never been watched.
func (s *Service) GetChannelStatistics(channelID string) *ChannelStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.stats(channelID, s.clock.Now())
}

// GetTopWatchedChannels returns channels ranked by aggregated watch
// time, descending. Ties preserve ledger order. A non-positive limit
// returns all watched channels.
func (s *Service) GetTopWatchedChannels(limit int) []AggregatedChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.topWatched(limit)
}

// ClearHistory empties the ledger and the score cache. Returns whether
// the cleared state was durably persisted.
func (s *Service) ClearHistory() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.clear()
	s.cache.clear()
	metrics.HistorySize.Set(0)

	ok := s.persistLocked(context.Background())
	s.logger.Info().Bool("persisted", ok).Msg("viewing history cleared")
	return ok
}

// UpdateSettings shallow-merges the patch into the current settings and
// asks the Settings Provider to persist the merged block. Returns the
// persistence outcome; an invalid merged configuration is rejected.
func (s *Service) UpdateSettings(patch SettingsPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := patch.Apply(s.settings)
	if err := merged.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("rejecting settings update")
		return false
	}
	s.settings = merged

	// A shrunken limit must not leave the ledger over length.
	if s.ledger.len() > merged.HistoryLimit {
		s.ledger.truncate(merged.HistoryLimit)
		s.cache.clear()
		metrics.HistorySize.Set(float64(s.ledger.len()))
		s.persistLocked(context.Background())
	}

	if s.provider == nil {
		s.logger.Warn().Msg("no settings provider configured, update kept in memory only")
		return false
	}
	if err := s.provider.SaveSettings(merged); err != nil {
		s.logger.Error().Err(err).Msg("persisting settings failed")
		return false
	}

	s.logger.Info().
		Bool("enabled", merged.Enabled).
		Int("history_limit", merged.HistoryLimit).
		Int("max_recommendations", merged.MaxRecommendations).
		Msg("settings updated")
	return true
}

// Settings returns a copy of the current settings.
func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Metrics is a snapshot of the service counters for observability.
type Metrics struct {
	RequestCount      int64 `json:"request_count"`
	CacheHits         int64 `json:"cache_hits"`
	CacheMisses       int64 `json:"cache_misses"`
	PersistenceErrors int64 `json:"persistence_errors"`
	HistorySize       int   `json:"history_size"`
	CacheSize         int   `json:"cache_size"`
}

// Metrics returns the current service metrics.
func (s *Service) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Metrics{
		RequestCount:      s.requestCount.Load(),
		CacheHits:         s.cacheHits.Load(),
		CacheMisses:       s.cacheMisses.Load(),
		PersistenceErrors: s.persistErrors.Load(),
		HistorySize:       s.ledger.len(),
		CacheSize:         s.cache.size(),
	}
}

// persistLocked writes the ledger and metadata as one logical document.
// A failure is logged and reported, never propagated: the in-memory
// state stays authoritative and the subsystem continues in degraded
// in-memory mode. Must be called with mu held for writing.
func (s *Service) persistLocked(ctx context.Context) bool {
	doc := &Document{
		History:         s.ledger.entries,
		ChannelMetadata: s.metadata,
	}
	if doc.History == nil {
		doc.History = []ViewingHistoryEntry{}
	}

	if err := s.store.Save(ctx, doc); err != nil {
		s.persistErrors.Add(1)
		metrics.PersistenceErrors.Inc()
		s.logger.Error().Err(err).Msg("persisting viewing history failed")
		return false
	}
	return true
}
