// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

// Package config loads the ViewLens configuration using Koanf v2 with
// layered sources and persists runtime settings updates back to the
// configuration file.
//
// Precedence is ENV > file > defaults:
//
//  1. Built-in defaults from defaultConfig()
//  2. Optional YAML config file
//  3. VIEWLENS_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/viewlens/viewlens/internal/recommend"
)

// ConfigPathEnvVar names the environment variable that points at an
// explicit config file, overriding the default search paths.
const ConfigPathEnvVar = "VIEWLENS_CONFIG"

// envPrefix is stripped from environment variables before they are
// mapped onto config paths: VIEWLENS_SERVER__PORT -> server.port.
const envPrefix = "VIEWLENS_"

// DefaultConfigPaths are searched in order when no explicit path is given.
var DefaultConfigPaths = []string{
	"viewlens.yaml",
	"config/viewlens.yaml",
	"/etc/viewlens/viewlens.yaml",
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port. Default: 8585
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// ReadTimeout bounds the time spent reading a request.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds the time spent writing a response.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists the allowed cross-origin hosts.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests is the number of requests allowed per IP per window.
	RateLimitRequests int `koanf:"rate_limit_requests" validate:"min=1"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds the log settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`

	// Format is json or console.
	Format string `koanf:"format" validate:"oneof=json console"`
}

// StorageConfig holds the embedded database settings.
type StorageConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path" validate:"required"`
}

// Config is the full application configuration tree.
type Config struct {
	Server          ServerConfig       `koanf:"server"`
	Logging         LoggingConfig      `koanf:"logging"`
	Storage         StorageConfig      `koanf:"storage"`
	Recommendations recommend.Settings `koanf:"recommendations"`
}

// defaultConfig returns the built-in defaults, the lowest-precedence
// configuration layer.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8585,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Path: "data/viewlens",
		},
		Recommendations: recommend.DefaultSettings(),
	}
}

// Validate checks the configuration tree for errors.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Recommendations.Validate(); err != nil {
		return fmt.Errorf("invalid recommendations config: %w", err)
	}
	return nil
}

// Manager owns the loaded configuration and writes settings updates
// back to the config file. It implements recommend.SettingsProvider.
type Manager struct {
	mu   sync.Mutex
	cfg  Config
	path string
}

// Load builds the configuration from defaults, an optional YAML file
// and VIEWLENS_* environment variables, in increasing precedence.
// An empty path triggers the default search; a missing searched file is
// not an error, a missing explicit file is.
func Load(path string) (*Manager, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
			path = ""
		}
	}

	// VIEWLENS_SERVER__PORT=9090 -> server.port
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPaths[0]
	}
	return &Manager{cfg: cfg, path: path}, nil
}

// Config returns a copy of the loaded configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Path returns the config file path settings updates are written to.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// SaveSettings replaces the recommendations block and rewrites the
// config file. The whole tree is re-serialized so the file stays the
// single source of truth across restarts.
func (m *Manager) SaveSettings(s recommend.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.Recommendations = s

	k := koanf.New(".")
	if err := k.Load(structs.Provider(m.cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("serialize configuration: %w", err)
	}
	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write config file %s: %w", m.path, err)
	}
	return nil
}

// findConfigFile returns the first existing config file, honoring the
// VIEWLENS_CONFIG override, or empty when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps VIEWLENS_* environment variables to config
// paths. A double underscore separates tree levels; single underscores
// stay part of the key:
//
//	VIEWLENS_SERVER__PORT                          -> server.port
//	VIEWLENS_RECOMMENDATIONS__HISTORY_LIMIT        -> recommendations.history_limit
//	VIEWLENS_RECOMMENDATIONS__RECOMMENDATION_FACTORS__VIEW_TIME
//	                                               -> recommendations.recommendation_factors.view_time
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// sliceConfigPaths are the paths parsed as comma-separated slices when
// set through environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values into slices
// for known slice fields. Env vars arrive as plain strings while the
// config tree expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}
