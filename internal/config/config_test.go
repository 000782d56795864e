// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewlens.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	manager, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := manager.Config()

	if cfg.Server.Port != 8585 {
		t.Errorf("expected default port 8585, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !cfg.Recommendations.Enabled || cfg.Recommendations.HistoryLimit != 100 {
		t.Errorf("unexpected recommendation defaults: %+v", cfg.Recommendations)
	}
	f := cfg.Recommendations.RecommendationFactors
	if f.Genre != 0.5 || f.ViewTime != 0.3 || f.Recency != 0.2 {
		t.Errorf("unexpected default factors: %+v", f)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  shutdown_timeout: 30s
logging:
  level: debug
recommendations:
  history_limit: 25
  recommendation_factors:
    genre: 0.7
    view_time: 0.2
    recency: 0.1
`)

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := manager.Config()

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected shutdown_timeout 30s, got %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Recommendations.HistoryLimit != 25 {
		t.Errorf("expected history_limit 25, got %d", cfg.Recommendations.HistoryLimit)
	}
	if cfg.Recommendations.RecommendationFactors.Genre != 0.7 {
		t.Errorf("unexpected factors: %+v", cfg.Recommendations.RecommendationFactors)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host, got %s", cfg.Server.Host)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("VIEWLENS_SERVER__PORT", "7070")
	t.Setenv("VIEWLENS_RECOMMENDATIONS__HISTORY_LIMIT", "42")
	t.Setenv("VIEWLENS_SERVER__CORS_ORIGINS", "https://a.example, https://b.example")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := manager.Config()

	if cfg.Server.Port != 7070 {
		t.Errorf("env must beat file, got port %d", cfg.Server.Port)
	}
	if cfg.Recommendations.HistoryLimit != 42 {
		t.Errorf("expected history_limit 42, got %d", cfg.Recommendations.HistoryLimit)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("comma-separated origins must split: %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "recommendations:\n  history_limit: 0\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for zero history_limit")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("an explicit but missing config file must be an error")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VIEWLENS_SERVER__PORT", "server.port"},
		{"VIEWLENS_LOGGING__LEVEL", "logging.level"},
		{"VIEWLENS_RECOMMENDATIONS__MIN_VIEW_TIME_SECONDS", "recommendations.min_view_time_seconds"},
		{"VIEWLENS_RECOMMENDATIONS__RECOMMENDATION_FACTORS__VIEW_TIME", "recommendations.recommendation_factors.view_time"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	path := writeConfig(t, "{}\n")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	updated := manager.Config().Recommendations
	updated.HistoryLimit = 77
	updated.RecommendationFactors.Genre = 0.9

	if err := manager.SaveSettings(updated); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.Config().Recommendations
	if got.HistoryLimit != 77 {
		t.Errorf("expected persisted history_limit 77, got %d", got.HistoryLimit)
	}
	if got.RecommendationFactors.Genre != 0.9 {
		t.Errorf("expected persisted genre weight 0.9, got %f", got.RecommendationFactors.Genre)
	}
	// Unrelated sections survive the rewrite.
	if reloaded.Config().Server.Port != 8585 {
		t.Errorf("server config must survive settings save, got %+v", reloaded.Config().Server)
	}
}
