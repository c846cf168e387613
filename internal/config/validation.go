// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/vidshare/internal/validate"
)

// Validate checks the effective configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("dataDir", cfg.DataDir)
	if !validate.LogLevel(strings.ToLower(cfg.LogLevel)).IsValid() {
		v.AddError("logLevel", fmt.Sprintf("must be one of %v", validate.LogLevels), cfg.LogLevel)
	}

	validateServer(v, cfg.Server)
	validateTokens(v, cfg.API)

	v.OneOf("store.backend", cfg.Store.Backend, []string{BackendSQLite, BackendMemory})
	if cfg.Store.Backend == BackendSQLite {
		v.NotEmpty("store.path", cfg.Store.Path)
		v.DurationRange("store.busyTimeout", cfg.Store.BusyTimeout, 0, time.Minute)
		v.Range("store.maxOpenConns", cfg.Store.MaxOpenConns, 1, 64)
	}

	v.OneOf("bookmarks.backend", cfg.Bookmarks.Backend, []string{BackendBadger, BackendFile, BackendMemory})
	if cfg.Bookmarks.Backend != BackendMemory {
		v.NotEmpty("bookmarks.path", cfg.Bookmarks.Path)
	}

	v.OneOf("cache.backend", cfg.Cache.Backend, []string{BackendMemory, BackendRedis, BackendNone})
	v.OneOf("realtime.backend", cfg.Realtime.Backend, []string{BackendMemory, BackendRedis})
	if cfg.Realtime.Backend == BackendRedis {
		v.NotEmpty("realtime.channel", cfg.Realtime.Channel)
	}
	if cfg.UsesRedis() {
		v.ListenAddr("redis.addr", cfg.Redis.Addr)
		v.Range("redis.db", cfg.Redis.DB, 0, 15)
	}

	v.DurationRange("feed.fetchTimeout", cfg.Feed.FetchTimeout, 100*time.Millisecond, time.Minute)
	v.DurationRange("feed.cacheTTL", cfg.Feed.CacheTTL, 0, time.Hour)
	v.Range("feed.breakerThreshold", cfg.Feed.BreakerThreshold, 1, 100)
	v.DurationRange("feed.breakerReset", cfg.Feed.BreakerReset, time.Second, 10*time.Minute)

	v.Positive("upload.globalRate", cfg.Upload.GlobalRate)
	v.Range("upload.globalBurst", cfg.Upload.GlobalBurst, 1, 10000)
	v.DurationRange("upload.perUserEvery", cfg.Upload.PerUserEvery, time.Millisecond, 24*time.Hour)
	v.Range("upload.perUserBurst", cfg.Upload.PerUserBurst, 1, 1000)

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporterType", cfg.Telemetry.ExporterType, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			v.AddError("telemetry.samplingRate", "must be between 0 and 1", cfg.Telemetry.SamplingRate)
		}
	}

	return v.Err()
}

func validateServer(v *validate.Validator, s ServerConfig) {
	v.ListenAddr("server.listenAddr", s.ListenAddr)
	v.DurationRange("server.readTimeout", s.ReadTimeout, time.Second, 10*time.Minute)
	v.DurationRange("server.writeTimeout", s.WriteTimeout, time.Second, 10*time.Minute)
	v.DurationRange("server.shutdownTimeout", s.ShutdownTimeout, time.Second, 5*time.Minute)
	if s.RateLimit < 0 {
		v.AddError("server.rateLimit", "must not be negative", s.RateLimit)
	}
	for i, origin := range s.CORSOrigins {
		if origin == "*" {
			continue
		}
		v.URL(fmt.Sprintf("server.corsOrigins[%d]", i), origin, []string{"http", "https"})
	}
}

func validateTokens(v *validate.Validator, api APIConfig) {
	for tok, u := range api.Tokens {
		field := "api.tokens." + mask(tok)
		if len(tok) < 16 {
			v.AddError(field, "token must be at least 16 characters", mask(tok))
		}
		v.NotEmpty(field+".id", u.ID)
	}
}

// mask keeps the first four characters of a secret for error messages.
func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
