// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vidshare/internal/config"
	"github.com/ManuGH/vidshare/internal/log"
)

// ServiceName is attached to every log line.
const ServiceName = "vidshare"

// App owns the long-lived runtime lifecycle (config watching, reload wiring,
// the feed follower) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	runtime      *Runtime
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. holder may be nil.
func NewApp(manager Manager, holder *config.Holder, rt *Runtime) *App {
	return &App{
		logger:       log.WithComponent("daemon"),
		manager:      manager,
		holder:       holder,
		runtime:      rt,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.holder != nil {
		// The watcher is best-effort: a missing inotify slot must not stop serving.
		g.Go(func() error {
			if err := a.holder.Watch(ctx); err != nil {
				a.logger.Warn().Err(err).
					Str(log.FieldEvent, "config.watcher_failed").
					Msg("config watcher stopped")
			}
			return nil
		})

		applyCh := make(chan config.AppConfig, 1)
		a.holder.Subscribe(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.apply(cfg)
				}
			}
		})
	}

	if a.holder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(log.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.holder.Reload(ctx); err != nil && a.runtime != nil {
						a.runtime.Audit.ConfigReload("signal", err)
					}
				}
			}
		})
	}

	if a.runtime != nil && a.runtime.Feed != nil && a.runtime.Bus != nil {
		g.Go(func() error {
			err := a.runtime.Feed.Follow(ctx, a.runtime.Bus)
			if err != nil && ctx.Err() == nil {
				// Cached pages still expire on their TTL without the follower.
				a.logger.Warn().Err(err).
					Str(log.FieldEvent, "feed.follow_stopped").
					Msg("feed no longer merges new uploads")
			}
			return nil
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.WithoutCancel(ctx))
		}
		return err
	})

	return g.Wait()
}

// apply installs the reloadable parts of cfg: log level and API tokens.
// Listener, storage and backend choices need a restart.
func (a *App) apply(cfg config.AppConfig) {
	log.Reconfigure(log.Config{
		Level:   cfg.LogLevel,
		Service: ServiceName,
		Version: cfg.Version,
	})
	if a.runtime == nil {
		return
	}
	a.runtime.Tokens.Replace(cfg.API.Tokens)
	a.runtime.Audit.ConfigReload("system", nil)
	a.logger.Info().
		Str(log.FieldEvent, "config.applied").
		Str("log_level", cfg.LogLevel).
		Int("tokens", a.runtime.Tokens.Len()).
		Msg("reloaded configuration applied")
}
