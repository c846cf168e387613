// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/vidshare/internal/log"
)

const reloadDebounce = 500 * time.Millisecond

// Holder holds the current configuration and swaps it atomically on reload.
// A reload that fails to load or validate keeps the previous configuration.
type Holder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	logger  zerolog.Logger

	listenersMu sync.RWMutex
	listeners   []chan<- AppConfig
}

// NewHolder creates a holder seeded with initial.
func NewHolder(initial AppConfig, loader *Loader) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		logger:  log.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reads the configuration again and notifies listeners on success.
func (h *Holder) Reload(_ context.Context) error {
	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).
			Str(log.FieldEvent, "config.reload_failed").
			Msg("keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	h.logChanges(prev, next)
	h.notify(next)
	h.logger.Info().Str(log.FieldEvent, "config.reloaded").Msg("configuration reloaded")
	return nil
}

// Watch reloads on changes to the config file until ctx is done. It blocks,
// so it can run inside an errgroup. Without a config file it just waits.
func (h *Holder) Watch(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().
			Str(log.FieldEvent, "config.watcher_disabled").
			Msg("no config file, watcher disabled")
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	// Editors replace the file, so the directory is watched and events are
	// filtered by name.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	target := filepath.Clean(path)
	h.logger.Info().
		Str(log.FieldEvent, "config.watcher_started").
		Str("path", target).
		Msg("watching config file for changes")

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(log.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			h.logger.Debug().
				Str(log.FieldEvent, "config.file_changed").
				Str("op", ev.Op.String()).
				Msg("config file changed")
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				_ = h.Reload(ctx)
			})
			timerMu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			h.logger.Error().Err(err).
				Str(log.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Subscribe registers ch for successful reloads. Sends never block; a full
// channel misses that update. The caller owns ch.
func (h *Holder) Subscribe(ch chan<- AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg AppConfig) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().
				Str(log.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// logChanges reports changed settings. Log level and API tokens apply
// immediately; every other section needs a restart.
func (h *Holder) logChanges(prev, next AppConfig) {
	if prev.LogLevel != next.LogLevel {
		h.logger.Info().Str("old", prev.LogLevel).Str("new", next.LogLevel).Msg("config changed: logLevel")
	}
	if !reflect.DeepEqual(prev.API.Tokens, next.API.Tokens) {
		h.logger.Info().Int("old", len(prev.API.Tokens)).Int("new", len(next.API.Tokens)).Msg("config changed: api tokens")
	}
	for _, section := range RestartRequired(prev, next) {
		h.logger.Warn().
			Str(log.FieldEvent, "config.restart_required").
			Str("section", section).
			Msg("config changed, requires restart: " + section)
	}
}

// RestartRequired lists the sections that differ between prev and next and
// only take effect after a restart.
func RestartRequired(prev, next AppConfig) []string {
	sections := []struct {
		name      string
		old, next any
	}{
		{"dataDir", prev.DataDir, next.DataDir},
		{"server", prev.Server, next.Server},
		{"store", prev.Store, next.Store},
		{"bookmarks", prev.Bookmarks, next.Bookmarks},
		{"redis", prev.Redis, next.Redis},
		{"cache", prev.Cache, next.Cache},
		{"realtime", prev.Realtime, next.Realtime},
		{"feed", prev.Feed, next.Feed},
		{"upload", prev.Upload, next.Upload},
		{"telemetry", prev.Telemetry, next.Telemetry},
	}
	var changed []string
	for _, s := range sections {
		if !reflect.DeepEqual(s.old, s.next) {
			changed = append(changed, s.name)
		}
	}
	return changed
}
