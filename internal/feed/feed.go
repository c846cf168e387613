// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package feed loads the home, related and trending lists. Reads are
// bounded by a timeout and degrade to the built-in dataset instead of
// failing.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/vidshare/internal/cache"
	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/metrics"
	"github.com/ManuGH/vidshare/internal/realtime"
	"github.com/ManuGH/vidshare/internal/resilience"
	"github.com/ManuGH/vidshare/internal/store"
)

const (
	DefaultFetchTimeout = 5 * time.Second
	DefaultCacheTTL     = 2 * time.Minute
	RelatedLimit        = 6
	TrendingLimit       = 10
)

// Origin tells a client where a page came from.
type Origin string

const (
	OriginStore    Origin = "store"
	OriginCache    Origin = "cache"
	OriginFallback Origin = "fallback"
)

// Page is one loaded list.
type Page struct {
	Videos []video.Record `json:"videos"`
	Origin Origin         `json:"origin"`
}

// Lister is the read side of storage the feed needs.
type Lister interface {
	ListVideos(ctx context.Context, q store.Query) ([]video.Record, error)
}

// Config tunes a Loader. Zero values fall back to the defaults.
type Config struct {
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	Breaker      resilience.Config
}

// Loader serves feed pages.
type Loader struct {
	lister  Lister
	cache   cache.Cache
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time

	mu   sync.Mutex
	keys map[string]store.Query // cache keys written, for realtime merges
}

// New creates a Loader. A nil cache disables caching.
func New(lister Lister, c cache.Cache, cfg Config) *Loader {
	if c == nil {
		c = cache.Nop{}
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	return &Loader{
		lister:  lister,
		cache:   c,
		breaker: resilience.New("feed", cfg.Breaker),
		timeout: cfg.FetchTimeout,
		ttl:     cfg.CacheTTL,
		now:     time.Now,
		keys:    make(map[string]store.Query),
	}
}

// Home loads the home feed. An empty, failed or slow store read yields the
// built-in dataset filtered by q.
func (l *Loader) Home(ctx context.Context, q store.Query) Page {
	q = q.Normalized()
	key := cacheKey(q)
	logger := log.WithComponentFromContext(ctx, "feed")

	if recs, ok := l.cached(ctx, key); ok {
		metrics.RecordFeedLoad(string(OriginCache))
		return Page{Videos: recs, Origin: OriginCache}
	}

	recs, err := l.fetch(ctx, key, q)
	if err != nil || len(recs) == 0 {
		ev := logger.Warn()
		if err == nil {
			ev = logger.Debug()
		}
		ev.Err(err).
			Str(log.FieldEvent, "feed.fallback").
			Str(log.FieldCategory, string(q.Category)).
			Msg("serving built-in dataset")
		metrics.RecordFeedLoad(string(OriginFallback))
		return Page{Videos: store.Select(DemoVideos(l.now()), q), Origin: OriginFallback}
	}

	l.put(ctx, key, q, recs)
	metrics.RecordFeedLoad(string(OriginStore))
	return Page{Videos: recs, Origin: OriginStore}
}

// Trending lists the most viewed videos.
func (l *Loader) Trending(ctx context.Context) Page {
	return l.Home(ctx, store.Query{Order: store.OrderMostViewed, Limit: TrendingLimit})
}

// Related lists other videos of rec's category by views. Failures yield an
// empty list.
func (l *Loader) Related(ctx context.Context, rec video.Record) []video.Record {
	q := store.Query{
		Category:  rec.Category,
		ExcludeID: rec.ID,
		Order:     store.OrderMostViewed,
		Limit:     RelatedLimit,
	}
	if IsDemoID(rec.ID) {
		return store.Select(DemoVideos(l.now()), q)
	}

	recs, err := l.fetch(ctx, "related:"+rec.ID, q)
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "feed")
		logger.Debug().Err(err).
			Str(log.FieldEvent, "feed.related_failed").
			Str(log.FieldVideoID, rec.ID).
			Msg("related videos unavailable")
		return []video.Record{}
	}
	return recs
}

// fetch reads through the breaker with the fetch timeout. Concurrent
// identical reads share one storage call.
func (l *Loader) fetch(ctx context.Context, key string, q store.Query) ([]video.Record, error) {
	ch := l.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		var recs []video.Record
		start := time.Now()
		err := l.breaker.Do(fetchCtx, func(ctx context.Context) error {
			var err error
			recs, err = l.lister.ListVideos(ctx, q)
			return err
		})
		metrics.ObserveFeedLoad(time.Since(start).Seconds())
		return recs, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("list videos: %w", res.Err)
		}
		return slices.Clone(res.Val.([]video.Record)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) cached(ctx context.Context, key string) ([]video.Record, bool) {
	b, ok := l.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var recs []video.Record
	if err := json.Unmarshal(b, &recs); err != nil {
		l.cache.Delete(ctx, key)
		return nil, false
	}
	return recs, true
}

func (l *Loader) put(ctx context.Context, key string, q store.Query, recs []video.Record) {
	b, err := json.Marshal(recs)
	if err != nil {
		return
	}
	l.cache.Set(ctx, key, b, l.ttl)

	l.mu.Lock()
	l.keys[key] = q
	l.mu.Unlock()
}

// Announce merges a newly created record into every cached newest-first
// list it belongs to, without refetching. Most-viewed lists are dropped.
func (l *Loader) Announce(ctx context.Context, rec video.Record) {
	l.mu.Lock()
	keys := make(map[string]store.Query, len(l.keys))
	for k, q := range l.keys {
		keys[k] = q
	}
	l.mu.Unlock()

	for key, q := range keys {
		if q.Category != "" && q.Category != rec.Category {
			continue
		}
		if q.Order == store.OrderMostViewed {
			l.cache.Delete(ctx, key)
			continue
		}
		recs, ok := l.cached(ctx, key)
		if !ok {
			l.forget(key)
			continue
		}
		l.put(ctx, key, q, mergeNewest(recs, rec, q.Limit))
	}
}

func (l *Loader) forget(key string) {
	l.mu.Lock()
	delete(l.keys, key)
	l.mu.Unlock()
}

// mergeNewest puts rec first, dropping any older copy and trimming to limit.
func mergeNewest(recs []video.Record, rec video.Record, limit int) []video.Record {
	out := make([]video.Record, 0, len(recs)+1)
	out = append(out, rec)
	for _, r := range recs {
		if r.ID != rec.ID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Follow merges bus events until ctx is cancelled.
func (l *Loader) Follow(ctx context.Context, bus realtime.Bus) error {
	sub, err := bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("feed subscribe: %w", err)
	}
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C():
			if !ok {
				return errors.New("feed subscription closed")
			}
			l.Announce(ctx, ev.Video)
		}
	}
}

func cacheKey(q store.Query) string {
	cat := string(q.Category)
	if cat == "" {
		cat = "all"
	}
	return fmt.Sprintf("feed:%s:%s:%d", cat, q.Order, q.Limit)
}
