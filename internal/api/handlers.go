// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/viewlens/viewlens/internal/recommend"
)

// recommendationMethod identifies the scoring strategy in responses.
const recommendationMethod = "content-based"

// Handler exposes the recommendation service over HTTP.
type Handler struct {
	svc *recommend.Service
}

// NewHandler creates the HTTP handler for the recommendation service.
func NewHandler(svc *recommend.Service) *Handler {
	return &Handler{svc: svc}
}

// recordViewingRequest is the POST /history payload.
type recordViewingRequest struct {
	Channel         recommend.Channel `json:"channel"`
	DurationSeconds int64             `json:"durationSeconds"`
}

// recordViewingResponse reports whether the view was recorded.
type recordViewingResponse struct {
	Recorded bool `json:"recorded"`
}

// RecordViewing handles POST /api/v1/history.
func (h *Handler) RecordViewing(w http.ResponseWriter, r *http.Request) {
	var req recordViewingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}
	if req.Channel.ID == "" {
		WriteBadRequest(w, r, "channel.id is required")
		return
	}
	if req.DurationSeconds < 0 {
		WriteBadRequest(w, r, "durationSeconds must be non-negative")
		return
	}

	recorded := h.svc.RecordViewing(req.Channel, req.DurationSeconds)
	WriteSuccess(w, r, recordViewingResponse{Recorded: recorded})
}

// GetHistory handles GET /api/v1/history. An optional limit query
// parameter truncates the result; omitted or non-positive returns all.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, r, h.svc.GetViewingHistory(limit))
}

// ClearHistory handles DELETE /api/v1/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	persisted := h.svc.ClearHistory()
	WriteSuccess(w, r, map[string]bool{"persisted": persisted})
}

// GetTopWatched handles GET /api/v1/history/top.
func (h *Handler) GetTopWatched(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, r, h.svc.GetTopWatchedChannels(limit))
}

// GetChannelStats handles GET /api/v1/history/{channelID}/stats.
func (h *Handler) GetChannelStats(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	stats := h.svc.GetChannelStatistics(channelID)
	if stats == nil {
		WriteNotFound(w, r, "channel has no viewing history: "+channelID)
		return
	}
	WriteSuccess(w, r, stats)
}

// recommendationsRequest is the POST /recommendations payload. The
// caller supplies the full candidate channel list; the service never
// resolves channels itself.
type recommendationsRequest struct {
	Channels         []recommend.Channel `json:"channels"`
	CurrentChannelID string              `json:"currentChannelId,omitempty"`
}

// recommendationsResponse wraps the scored channels with the scoring
// method and generation timestamp.
type recommendationsResponse struct {
	Timestamp       int64                     `json:"timestamp"`
	Method          string                    `json:"method"`
	Recommendations []recommend.ScoredChannel `json:"recommendations"`
}

// GetRecommendations handles POST /api/v1/recommendations.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	scored := h.svc.GetRecommendations(req.Channels, req.CurrentChannelID)
	WriteSuccess(w, r, recommendationsResponse{
		Timestamp:       time.Now().UnixMilli(),
		Method:          recommendationMethod,
		Recommendations: scored,
	})
}

// GetSettings handles GET /api/v1/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.Settings())
}

// updateSettingsResponse reports the persistence outcome alongside the
// settings now in effect.
type updateSettingsResponse struct {
	Persisted bool               `json:"persisted"`
	Settings  recommend.Settings `json:"settings"`
}

// UpdateSettings handles PUT /api/v1/settings with a partial update.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch recommend.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteBadRequest(w, r, "invalid request body: "+err.Error())
		return
	}

	if err := patch.Apply(h.svc.Settings()).Validate(); err != nil {
		NewResponseWriter(w, r).ValidationError("invalid settings", err.Error())
		return
	}

	persisted := h.svc.UpdateSettings(patch)
	WriteSuccess(w, r, updateSettingsResponse{Persisted: persisted, Settings: h.svc.Settings()})
}

// GetStatus handles GET /api/v1/status with service counters.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.svc.Metrics())
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// parseLimit reads the optional limit query parameter. Writes a 400 and
// returns false on a malformed value.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		WriteBadRequest(w, r, "invalid limit: "+raw)
		return 0, false
	}
	return limit, true
}
