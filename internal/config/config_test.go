// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/validate"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Feed.FetchTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Feed.CacheTTL)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.False(t, cfg.UsesRedis())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
dataDir: `+dir+`
logLevel: debug
server:
  listenAddr: "127.0.0.1:9000"
api:
  tokens:
    "0123456789abcdef":
      id: u1
      name: Ada
cache:
  backend: redis
feed:
  fetchTimeout: 2s
`)
	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, 2*time.Second, cfg.Feed.FetchTimeout)
	assert.Equal(t, auth.User{ID: "u1", Name: "Ada"}, cfg.API.Tokens["0123456789abcdef"])
	assert.True(t, cfg.UsesRedis())
	// untouched sections keep their defaults
	assert.Equal(t, 2*time.Minute, cfg.Feed.CacheTTL)
	assert.Equal(t, BackendMemory, cfg.Realtime.Backend)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "feed:\n  fetchTimeout: 2s\n")
	t.Setenv("VIDSHARE_FEED_FETCH_TIMEOUT", "750ms")
	t.Setenv("VIDSHARE_STORE_BACKEND", "memory")
	t.Setenv("VIDSHARE_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("VIDSHARE_API_TOKEN", "env-token-0123456789")
	t.Setenv("VIDSHARE_API_TOKEN_USER", "ops")

	l := NewLoader(path, "test")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Feed.FetchTimeout)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "ops", cfg.API.Tokens["env-token-0123456789"].ID)
	assert.Contains(t, l.ConsumedEnvKeys, "VIDSHARE_FEED_FETCH_TIMEOUT")
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("VIDSHARE_FEED_FETCH_TIMEOUT", "soon")
	t.Setenv("VIDSHARE_REDIS_DB", "three")
	t.Setenv("VIDSHARE_TELEMETRY_ENABLED", "maybe")

	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Feed.FetchTimeout)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestUnknownEnvKeys(t *testing.T) {
	t.Setenv("VIDSHARE_FEED_TIMEOUT", "1s")
	l := NewLoader("", "test")
	_, err := l.Load()
	require.NoError(t, err)
	assert.Contains(t, l.UnknownEnvKeys(), "VIDSHARE_FEED_TIMEOUT")
	assert.NotContains(t, l.UnknownEnvKeys(), "VIDSHARE_FEED_FETCH_TIMEOUT")
}

func TestLoadFileStrict(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"unknown field", "config.yaml", "feed:\n  timeout: 1s\n", "field timeout not found"},
		{"multiple documents", "config.yaml", "logLevel: info\n---\nlogLevel: debug\n", "multiple documents"},
		{"not yaml", "config.json", "{}", "unsupported config format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			_, err := NewLoader(path, "test").Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Store.Backend = "postgres"
	cfg.Feed.FetchTimeout = 0
	cfg.Server.CORSOrigins = []string{"ftp://files.example"}
	cfg.API.Tokens = map[string]auth.User{"short": {ID: "u1"}}

	err := Validate(cfg)
	require.Error(t, err)

	var verr validate.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Subset(t, fields, []string{
		"logLevel",
		"store.backend",
		"feed.fetchTimeout",
		"server.corsOrigins[0]",
		"api.tokens.shor****",
	})
}

func TestValidateRedisOnlyWhenUsed(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Addr = "no-port"
	require.NoError(t, Validate(cfg))

	cfg.Realtime.Backend = BackendRedis
	require.Error(t, Validate(cfg))
}

func TestHolderReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "logLevel: info\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader)
	updates := make(chan AppConfig, 1)
	h.Subscribe(updates)

	writeConfig(t, dir, "logLevel: debug\n")
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, "debug", h.Get().LogLevel)
	assert.Equal(t, "debug", (<-updates).LogLevel)

	// a broken file keeps the previous config
	writeConfig(t, dir, "logLevel: [\n")
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "debug", h.Get().LogLevel)
}

func TestRestartRequired(t *testing.T) {
	prev := Defaults()
	assert.Empty(t, RestartRequired(prev, Defaults()))

	next := Defaults()
	next.LogLevel = "debug"
	next.API.Tokens = map[string]auth.User{"tok-000000000000001": {ID: "u1"}}
	assert.Empty(t, RestartRequired(prev, next), "log level and tokens apply live")

	next.Feed.FetchTimeout = time.Second
	next.Upload.PerUserBurst = 9
	next.Server.CORSOrigins = []string{"https://example.org"}
	assert.Equal(t, []string{"server", "feed", "upload"}, RestartRequired(prev, next))
}

func TestHolderReloadLogsRestartRequired(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "logLevel: info\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	h := NewHolder(initial, loader)
	h.logger = zerolog.New(&buf)

	writeConfig(t, dir, "logLevel: info\nfeed:\n  fetchTimeout: 2s\n")
	require.NoError(t, h.Reload(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "config changed, requires restart: feed")
	assert.Contains(t, out, `"event":"config.restart_required"`)
	assert.NotContains(t, out, "requires restart: upload")
}

func TestHolderNotifyDoesNotBlock(t *testing.T) {
	h := NewHolder(Defaults(), NewLoader("", "test"))
	full := make(chan AppConfig) // unbuffered, nobody reading
	h.Subscribe(full)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, h.Reload(context.Background()))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Reload blocked on a full listener")
	}
}

func TestHolderWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "logLevel: info\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx) }()

	// give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "logLevel: warn\n")

	assert.Eventually(t, func() bool { return h.Get().LogLevel == "warn" },
		5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestHolderWatchWithoutFileWaitsForCancel(t *testing.T) {
	h := NewHolder(Defaults(), NewLoader("", "test"))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, h.Watch(ctx))
}
