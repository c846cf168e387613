// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/log"
)

// ErrUnsupportedFormat is returned for config files that are not YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Loader handles configuration loading with precedence ENV > file > defaults.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty configPath means defaults plus
// environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, possibly empty.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}

func (l *Loader) envList(key string, def []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, def)
}

// Load builds the effective configuration: defaults, then the strict YAML
// file, then environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	if unknown := l.UnknownEnvKeys(); len(unknown) > 0 {
		logger := log.WithComponent("config")
		logger.Warn().
			Str(log.FieldEvent, "config.unknown_env").
			Strs("keys", unknown).
			Msg("ignoring unknown environment variables")
	}

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Unknown fields, non-YAML extensions and
// multi-document files are rejected.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %q (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- the config path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	const p = EnvPrefix

	cfg.DataDir = l.envString(p+"DATA_DIR", cfg.DataDir)
	cfg.LogLevel = l.envString(p+"LOG_LEVEL", cfg.LogLevel)

	cfg.Server.ListenAddr = l.envString(p+"LISTEN", cfg.Server.ListenAddr)
	cfg.Server.ReadTimeout = l.envDuration(p+"READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration(p+"WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration(p+"SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.CORSOrigins = l.envList(p+"CORS_ORIGINS", cfg.Server.CORSOrigins)
	cfg.Server.RateLimit = l.envInt(p+"RATE_LIMIT", cfg.Server.RateLimit)

	// A single token from the environment is added next to the file's tokens.
	if tok := l.envString(p+"API_TOKEN", ""); tok != "" {
		id := l.envString(p+"API_TOKEN_USER", "admin")
		if cfg.API.Tokens == nil {
			cfg.API.Tokens = make(map[string]auth.User)
		}
		cfg.API.Tokens[tok] = auth.User{ID: id, Name: id}
	} else {
		l.ConsumedEnvKeys[p+"API_TOKEN_USER"] = struct{}{}
	}

	cfg.Store.Backend = l.envString(p+"STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Path = l.envString(p+"STORE_PATH", cfg.Store.Path)
	cfg.Store.BusyTimeout = l.envDuration(p+"STORE_BUSY_TIMEOUT", cfg.Store.BusyTimeout)

	cfg.Bookmarks.Backend = l.envString(p+"BOOKMARKS_BACKEND", cfg.Bookmarks.Backend)
	cfg.Bookmarks.Path = l.envString(p+"BOOKMARKS_PATH", cfg.Bookmarks.Path)

	cfg.Redis.Addr = l.envString(p+"REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = l.envString(p+"REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = l.envInt(p+"REDIS_DB", cfg.Redis.DB)

	cfg.Cache.Backend = l.envString(p+"CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Realtime.Backend = l.envString(p+"REALTIME_BACKEND", cfg.Realtime.Backend)
	cfg.Realtime.Channel = l.envString(p+"REALTIME_CHANNEL", cfg.Realtime.Channel)

	cfg.Feed.FetchTimeout = l.envDuration(p+"FEED_FETCH_TIMEOUT", cfg.Feed.FetchTimeout)
	cfg.Feed.CacheTTL = l.envDuration(p+"FEED_CACHE_TTL", cfg.Feed.CacheTTL)

	cfg.Upload.GlobalRate = l.envFloat(p+"UPLOAD_GLOBAL_RATE", cfg.Upload.GlobalRate)
	cfg.Upload.PerUserEvery = l.envDuration(p+"UPLOAD_PER_USER_EVERY", cfg.Upload.PerUserEvery)
	cfg.Upload.PerUserBurst = l.envInt(p+"UPLOAD_PER_USER_BURST", cfg.Upload.PerUserBurst)

	cfg.Telemetry.Enabled = l.envBool(p+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.ExporterType = l.envString(p+"OTLP_EXPORTER", cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = l.envString(p+"OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(p+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}

// UnknownEnvKeys lists VIDSHARE_* variables that Load did not consume.
func (l *Loader) UnknownEnvKeys() []string {
	var out []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; !ok {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}
