// SPDX-License-Identifier: MIT

// Package daemon wires the vidshare collaborators together and owns the
// process lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/vidshare/internal/api"
	"github.com/ManuGH/vidshare/internal/audit"
	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/bookmarks"
	"github.com/ManuGH/vidshare/internal/cache"
	"github.com/ManuGH/vidshare/internal/config"
	"github.com/ManuGH/vidshare/internal/feed"
	"github.com/ManuGH/vidshare/internal/fsutil"
	"github.com/ManuGH/vidshare/internal/health"
	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/persistence/sqlite"
	"github.com/ManuGH/vidshare/internal/ratelimit"
	"github.com/ManuGH/vidshare/internal/realtime"
	"github.com/ManuGH/vidshare/internal/resilience"
	"github.com/ManuGH/vidshare/internal/store"
	"github.com/ManuGH/vidshare/internal/telemetry"
)

// Runtime is the assembled daemon: every collaborator plus the closers that
// release them.
type Runtime struct {
	Config    config.AppConfig
	Store     store.Store
	Cache     cache.Cache
	Bus       realtime.Bus
	Bookmarks bookmarks.Store
	Feed      *feed.Loader
	Tokens    *auth.Directory
	Health    *health.Manager
	Audit     *audit.Logger
	API       *api.Server
	Telemetry *telemetry.Provider

	redis   *redis.Client
	closers []namedCloser
	logger  zerolog.Logger
}

type namedCloser struct {
	name  string
	close func(context.Context) error
}

// Bootstrap builds the runtime from cfg. On error everything opened so far
// is closed again.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (rt *Runtime, err error) {
	rt = &Runtime{
		Config: cfg,
		logger: log.WithComponent("daemon"),
		Audit:  audit.NewLogger(),
		Health: health.NewManager(cfg.Version),
		Tokens: auth.NewDirectory(cfg.API.Tokens),
	}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
			rt = nil
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return rt, fmt.Errorf("create data dir: %w", err)
	}
	rt.Health.RegisterChecker(health.NewDirChecker("data_dir", cfg.DataDir))

	if cfg.UsesRedis() {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return rt, fmt.Errorf("connect redis: %w", err)
		}
		rt.redis = client
		rt.addCloser("redis", func(context.Context) error { return client.Close() })
		rt.Health.RegisterChecker(health.NewOptionalPingChecker("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}

	if rt.Store, err = openStore(cfg); err != nil {
		return rt, err
	}
	rt.addCloser("store", func(context.Context) error { return rt.Store.Close() })
	rt.Health.RegisterChecker(health.NewPingChecker("store", rt.Store.Ping))

	if rt.Cache, err = rt.openCache(cfg); err != nil {
		return rt, err
	}
	if rt.Bus, err = rt.openBus(cfg); err != nil {
		return rt, err
	}

	bmPath, err := bookmarksPath(cfg)
	if err != nil {
		return rt, fmt.Errorf("bookmarks path: %w", err)
	}
	if rt.Bookmarks, err = bookmarks.Open(cfg.Bookmarks.Backend, bmPath); err != nil {
		return rt, fmt.Errorf("open bookmarks: %w", err)
	}
	rt.addCloser("bookmarks", func(context.Context) error { return rt.Bookmarks.Close() })

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewProvider(ctx, telemetry.Config{
			Enabled:        true,
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Version,
			Environment:    cfg.Telemetry.Environment,
			ExporterType:   cfg.Telemetry.ExporterType,
			Endpoint:       cfg.Telemetry.Endpoint,
			SamplingRate:   cfg.Telemetry.SamplingRate,
		})
		if err != nil {
			rt.logger.Warn().Err(err).
				Str(log.FieldEvent, "telemetry.init_failed").
				Msg("continuing without tracing")
		} else {
			rt.Telemetry = tp
			rt.addCloser("telemetry", tp.Shutdown)
		}
	}

	rt.Feed = feed.New(rt.Store, rt.Cache, feed.Config{
		FetchTimeout: cfg.Feed.FetchTimeout,
		CacheTTL:     cfg.Feed.CacheTTL,
		Breaker: resilience.Config{
			Threshold:    cfg.Feed.BreakerThreshold,
			ResetTimeout: cfg.Feed.BreakerReset,
		},
	})

	rt.API = api.New(cfg, api.Deps{
		Store:     rt.Store,
		Feed:      rt.Feed,
		Bus:       rt.Bus,
		Bookmarks: rt.Bookmarks,
		Tokens:    rt.Tokens,
		Uploads:   ratelimit.New(uploadLimits(cfg.Upload)),
		Health:    rt.Health,
		Audit:     rt.Audit,
	})

	rt.logger.Info().
		Str(log.FieldEvent, "daemon.bootstrapped").
		Str("store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("realtime", cfg.Realtime.Backend).
		Str("bookmarks", cfg.Bookmarks.Backend).
		Int("tokens", rt.Tokens.Len()).
		Msg("runtime assembled")
	return rt, nil
}

func openStore(cfg config.AppConfig) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case "", config.BackendSQLite:
		path, err := dataPath(cfg, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("store path: %w", err)
		}
		s, err := store.OpenSQLite(path, sqlite.Config{
			BusyTimeout:  cfg.Store.BusyTimeout,
			MaxOpenConns: cfg.Store.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: store %q", ErrUnknownBackend, cfg.Store.Backend)
	}
}

func (rt *Runtime) openCache(cfg config.AppConfig) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.Nop{}, nil
	case "", config.BackendMemory:
		c := cache.NewMemory(cfg.Cache.CleanupInterval)
		rt.addCloser("cache", func(context.Context) error { return c.Close() })
		return c, nil
	case config.BackendRedis:
		return cache.NewRedis(rt.redis, cfg.Cache.Prefix, log.WithComponent("cache")), nil
	default:
		return nil, fmt.Errorf("%w: cache %q", ErrUnknownBackend, cfg.Cache.Backend)
	}
}

func (rt *Runtime) openBus(cfg config.AppConfig) (realtime.Bus, error) {
	switch cfg.Realtime.Backend {
	case "", config.BackendMemory:
		b := realtime.NewMemory()
		rt.addCloser("realtime", func(context.Context) error { return b.Close() })
		return b, nil
	case config.BackendRedis:
		return realtime.NewRedis(rt.redis, cfg.Realtime.Channel), nil
	default:
		return nil, fmt.Errorf("%w: realtime %q", ErrUnknownBackend, cfg.Realtime.Backend)
	}
}

func bookmarksPath(cfg config.AppConfig) (string, error) {
	if cfg.Bookmarks.Backend == config.BackendMemory || cfg.Bookmarks.Path == "" {
		return "", nil
	}
	return dataPath(cfg, cfg.Bookmarks.Path)
}

// dataPath keeps relative paths inside DataDir. Absolute paths are the
// operator's explicit choice and pass through.
func dataPath(cfg config.AppConfig, p string) (string, error) {
	if p == "" || filepath.IsAbs(p) {
		return p, nil
	}
	return fsutil.ConfineRelPath(cfg.DataDir, p)
}

func uploadLimits(u config.UploadConfig) ratelimit.Config {
	lc := ratelimit.Config{
		GlobalRate:   rate.Limit(u.GlobalRate),
		GlobalBurst:  u.GlobalBurst,
		PerUserBurst: u.PerUserBurst,
	}
	if u.PerUserEvery > 0 {
		lc.PerUserRate = rate.Every(u.PerUserEvery)
	}
	return lc
}

func (rt *Runtime) addCloser(name string, fn func(context.Context) error) {
	rt.closers = append(rt.closers, namedCloser{name: name, close: fn})
}

// RegisterHooks hands the closers to m so they run after the HTTP server
// has drained.
func (rt *Runtime) RegisterHooks(m Manager) {
	for _, c := range rt.closers {
		m.RegisterShutdownHook(c.name, c.close)
	}
	rt.closers = nil
}

// Close releases everything Bootstrap opened, newest first.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		c := rt.closers[i]
		if err := c.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
