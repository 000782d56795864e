// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package recommend

import (
	"context"
	"fmt"
	"time"
)

// DefaultGroup is the category label assigned to channels without one.
const DefaultGroup = "Uncategorized"

// Channel is an already-resolved playlist channel supplied by the host
// application. The recommendation service never resolves channels itself.
type Channel struct {
	// ID is the unique channel identifier.
	ID string `json:"id"`

	// Title is the display name of the channel.
	Title string `json:"title"`

	// Logo is the channel logo URL.
	Logo string `json:"logo,omitempty"`

	// Group is the category label (e.g. "Sports", "News").
	Group string `json:"group,omitempty"`

	// Language is the primary broadcast language.
	Language string `json:"language,omitempty"`

	// Tags is a set of free-form labels.
	Tags []string `json:"tags,omitempty"`

	// Passthrough playlist attributes, preserved verbatim.
	TvgID      string `json:"tvgId,omitempty"`
	TvgName    string `json:"tvgName,omitempty"`
	TvgLogo    string `json:"tvgLogo,omitempty"`
	GroupTitle string `json:"groupTitle,omitempty"`
}

// ViewingHistoryEntry is one row of the viewing history ledger.
// The ledger holds at most one entry per (channel, calendar day of
// LastViewed); same-day repeat views are merged into the existing entry.
type ViewingHistoryEntry struct {
	// ChannelID is the channel this entry belongs to.
	ChannelID string `json:"channelId"`

	// ChannelTitle is the channel title at recording time.
	ChannelTitle string `json:"channelTitle"`

	// ViewCount is the number of merged views (>= 1).
	ViewCount int `json:"viewCount"`

	// TotalViewTime is the accumulated watch time in seconds.
	TotalViewTime int64 `json:"totalViewTime"`

	// FirstViewed is the epoch-millisecond timestamp of the first view.
	FirstViewed int64 `json:"firstViewed"`

	// LastViewed is the epoch-millisecond timestamp of the latest view.
	LastViewed int64 `json:"lastViewed"`

	// Group is the channel category, DefaultGroup when unknown.
	Group string `json:"group"`
}

// ChannelMetadata holds per-channel descriptive attributes, upserted as
// channels are observed. New non-empty fields overwrite stored values;
// empty fields fall back to what was stored before.
type ChannelMetadata struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Logo       string   `json:"logo,omitempty"`
	Group      string   `json:"group,omitempty"`
	Language   string   `json:"language,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	TvgID      string   `json:"tvgId,omitempty"`
	TvgName    string   `json:"tvgName,omitempty"`
	TvgLogo    string   `json:"tvgLogo,omitempty"`
	GroupTitle string   `json:"groupTitle,omitempty"`
}

// ScoredChannel pairs a candidate channel with its similarity score.
type ScoredChannel struct {
	Channel Channel `json:"channel"`

	// Score is the weighted affinity score. With the default factors it
	// lies in [0, 1]; in general it is bounded by the sum of the factors.
	Score float64 `json:"score"`
}

// ChannelStats aggregates every ledger entry for a single channel.
type ChannelStats struct {
	ChannelID            string  `json:"channelId"`
	ChannelTitle         string  `json:"channelTitle"`
	TotalViewCount       int     `json:"totalViewCount"`
	TotalViewTime        int64   `json:"totalViewTime"`
	FirstViewed          int64   `json:"firstViewed"`
	LastViewed           int64   `json:"lastViewed"`
	DaysSinceFirstViewed int     `json:"daysSinceFirstViewed"`
	DaysSinceLastViewed  int     `json:"daysSinceLastViewed"`
	AverageViewDuration  float64 `json:"averageViewDuration"`
}

// AggregatedChannel is one row of the top-watched ranking.
type AggregatedChannel struct {
	ChannelID     string `json:"channelId"`
	ChannelTitle  string `json:"channelTitle"`
	Group         string `json:"group"`
	ViewCount     int    `json:"viewCount"`
	TotalViewTime int64  `json:"totalViewTime"`
	LastViewed    int64  `json:"lastViewed"`
}

// Factors are the non-negative scoring weights. They are not required to
// sum to 1; the final score scales with their sum.
type Factors struct {
	// Genre weighs shared category membership with recently watched channels.
	Genre float64 `json:"genre" koanf:"genre"`

	// ViewTime weighs overall viewing intensity across the scoring window.
	ViewTime float64 `json:"viewTime" koanf:"view_time"`

	// Recency weighs how recently the window entries were watched.
	Recency float64 `json:"recency" koanf:"recency"`
}

// Sum returns the total weight mass.
func (f Factors) Sum() float64 {
	return f.Genre + f.ViewTime + f.Recency
}

// Settings is the `recommendations` configuration block consumed from and
// persisted through the Settings Provider.
type Settings struct {
	// Enabled toggles the whole subsystem. When false, recording and
	// recommendation queries are no-ops.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// HistoryLimit is the maximum ledger length. The tail is dropped
	// after every mutation.
	HistoryLimit int `json:"historyLimit" koanf:"history_limit"`

	// MinViewTimeSeconds is the threshold below which a view is not
	// recorded.
	MinViewTimeSeconds int `json:"minViewTimeSeconds" koanf:"min_view_time_seconds"`

	// MaxRecommendations caps the result list of a recommendation query.
	MaxRecommendations int `json:"maxRecommendations" koanf:"max_recommendations"`

	// RecommendationFactors are the scoring weights.
	RecommendationFactors Factors `json:"recommendationFactors" koanf:"recommendation_factors"`
}

// DefaultSettings returns the production default settings.
func DefaultSettings() Settings {
	return Settings{
		Enabled:            true,
		HistoryLimit:       100,
		MinViewTimeSeconds: 30,
		MaxRecommendations: 10,
		RecommendationFactors: Factors{
			Genre:    0.5,
			ViewTime: 0.3,
			Recency:  0.2,
		},
	}
}

// Validate checks the settings for errors.
func (s Settings) Validate() error {
	if s.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be positive, got %d", s.HistoryLimit)
	}
	if s.MinViewTimeSeconds < 0 {
		return fmt.Errorf("min_view_time_seconds must be non-negative, got %d", s.MinViewTimeSeconds)
	}
	if s.MaxRecommendations < 1 {
		return fmt.Errorf("max_recommendations must be positive, got %d", s.MaxRecommendations)
	}
	f := s.RecommendationFactors
	if f.Genre < 0 || f.ViewTime < 0 || f.Recency < 0 {
		return fmt.Errorf("recommendation factors must be non-negative, got %+v", f)
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left
// untouched; set fields win over the current value.
type SettingsPatch struct {
	Enabled               *bool    `json:"enabled,omitempty"`
	HistoryLimit          *int     `json:"historyLimit,omitempty"`
	MinViewTimeSeconds    *int     `json:"minViewTimeSeconds,omitempty"`
	MaxRecommendations    *int     `json:"maxRecommendations,omitempty"`
	RecommendationFactors *Factors `json:"recommendationFactors,omitempty"`
}

// Apply returns s with the patch's set fields overriding.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.HistoryLimit != nil {
		s.HistoryLimit = *p.HistoryLimit
	}
	if p.MinViewTimeSeconds != nil {
		s.MinViewTimeSeconds = *p.MinViewTimeSeconds
	}
	if p.MaxRecommendations != nil {
		s.MaxRecommendations = *p.MaxRecommendations
	}
	if p.RecommendationFactors != nil {
		s.RecommendationFactors = *p.RecommendationFactors
	}
	return s
}

// Document is the durable state shape persisted as one logical document:
// the full ledger plus the channel metadata table.
type Document struct {
	History         []ViewingHistoryEntry      `json:"history"`
	ChannelMetadata map[string]ChannelMetadata `json:"channelMetadata"`
}

// Store abstracts the durable document store. Implemented by the
// storage package without creating circular imports.
type Store interface {
	// Load reads the persisted document. Returns ErrStateNotFound when
	// no document has been stored yet.
	Load(ctx context.Context) (*Document, error)

	// Save writes the document, replacing any previous state.
	Save(ctx context.Context, doc *Document) error
}

// SettingsProvider persists the `recommendations` settings block under
// the provider's own namespace. Typically implemented by the host
// application's configuration layer.
type SettingsProvider interface {
	SaveSettings(s Settings) error
}

// Clock supplies the current time. Calendar-day bucketing and recency
// math are driven by the clock's location, keeping the ledger merge rule
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
