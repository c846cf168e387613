// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for vidshare.
package config

import (
	"time"

	"github.com/ManuGH/vidshare/internal/auth"
)

// Backend names shared by the storage-like sections.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// AppConfig is the effective daemon configuration. The YAML file decodes
// straight into it on top of Defaults.
type AppConfig struct {
	Version  string `yaml:"-"`
	DataDir  string `yaml:"dataDir,omitempty"`
	LogLevel string `yaml:"logLevel,omitempty"`

	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Bookmarks BookmarksConfig `yaml:"bookmarks,omitempty"`
	Redis     RedisConfig     `yaml:"redis,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Realtime  RealtimeConfig  `yaml:"realtime,omitempty"`
	Feed      FeedConfig      `yaml:"feed,omitempty"`
	Upload    UploadConfig    `yaml:"upload,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	ReadTimeout     time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"writeTimeout,omitempty"`
	IdleTimeout     time.Duration `yaml:"idleTimeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
	CORSOrigins     []string      `yaml:"corsOrigins,omitempty"`
	RateLimit       int           `yaml:"rateLimit,omitempty"` // requests per minute per IP, 0 disables
}

// APIConfig maps bearer tokens to the users they sign in.
type APIConfig struct {
	Tokens map[string]auth.User `yaml:"tokens,omitempty"`
}

// StoreConfig selects the catalogue backend.
type StoreConfig struct {
	Backend      string        `yaml:"backend,omitempty"` // sqlite | memory
	Path         string        `yaml:"path,omitempty"`
	BusyTimeout  time.Duration `yaml:"busyTimeout,omitempty"`
	MaxOpenConns int           `yaml:"maxOpenConns,omitempty"`
}

// BookmarksConfig selects the bookmark backend.
type BookmarksConfig struct {
	Backend string `yaml:"backend,omitempty"` // badger | file | memory
	Path    string `yaml:"path,omitempty"`
}

// RedisConfig is shared by the redis cache and the redis realtime bus.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// CacheConfig selects the feed cache backend.
type CacheConfig struct {
	Backend         string        `yaml:"backend,omitempty"` // memory | redis | none
	CleanupInterval time.Duration `yaml:"cleanupInterval,omitempty"`
	Prefix          string        `yaml:"prefix,omitempty"`
}

// RealtimeConfig selects the "video created" bus.
type RealtimeConfig struct {
	Backend string `yaml:"backend,omitempty"` // memory | redis
	Channel string `yaml:"channel,omitempty"`
}

// FeedConfig tunes feed reads.
type FeedConfig struct {
	FetchTimeout     time.Duration `yaml:"fetchTimeout,omitempty"`
	CacheTTL         time.Duration `yaml:"cacheTTL,omitempty"`
	BreakerThreshold int           `yaml:"breakerThreshold,omitempty"`
	BreakerReset     time.Duration `yaml:"breakerReset,omitempty"`
}

// UploadConfig bounds how fast videos can be uploaded.
type UploadConfig struct {
	GlobalRate   float64       `yaml:"globalRate,omitempty"` // per second
	GlobalBurst  int           `yaml:"globalBurst,omitempty"`
	PerUserEvery time.Duration `yaml:"perUserEvery,omitempty"`
	PerUserBurst int           `yaml:"perUserBurst,omitempty"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty"`
	Environment  string  `yaml:"environment,omitempty"`
	ExporterType string  `yaml:"exporterType,omitempty"` // grpc | http
	Endpoint     string  `yaml:"endpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty"`
}

// Defaults returns the configuration used when neither file nor environment
// says otherwise.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:  "data",
		LogLevel: "info",
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       300,
		},
		Store: StoreConfig{
			Backend:      BackendSQLite,
			Path:         "vidshare.db",
			BusyTimeout:  5 * time.Second,
			MaxOpenConns: 8,
		},
		Bookmarks: BookmarksConfig{
			Backend: BackendBadger,
			Path:    "bookmarks",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Cache: CacheConfig{
			Backend:         BackendMemory,
			CleanupInterval: time.Minute,
			Prefix:          "vidshare:cache:",
		},
		Realtime: RealtimeConfig{
			Backend: BackendMemory,
			Channel: "vidshare:videos:created",
		},
		Feed: FeedConfig{
			FetchTimeout:     5 * time.Second,
			CacheTTL:         2 * time.Minute,
			BreakerThreshold: 3,
			BreakerReset:     30 * time.Second,
		},
		Upload: UploadConfig{
			GlobalRate:   5,
			GlobalBurst:  20,
			PerUserEvery: 10 * time.Second,
			PerUserBurst: 3,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  "vidshare",
			Environment:  "production",
			ExporterType: "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// UsesRedis reports whether any component needs the redis client.
func (c AppConfig) UsesRedis() bool {
	return c.Cache.Backend == BackendRedis || c.Realtime.Backend == BackendRedis
}
