// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

// MemoryStore keeps everything in process. Used in tests and when no data
// directory is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	videos   map[string]video.Record
	comments map[string][]video.Comment
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		videos:   make(map[string]video.Record),
		comments: make(map[string][]video.Comment),
	}
}

func (m *MemoryStore) CreateVideo(_ context.Context, d video.Draft) (video.Record, error) {
	if err := validateDraft(d); err != nil {
		return video.Record{}, err
	}
	d.Views, d.Likes = 0, 0
	rec := d.Record(uuid.NewString(), nowFunc())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[rec.ID] = rec
	return rec, nil
}

func (m *MemoryStore) GetVideo(_ context.Context, id string) (video.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.videos[id]
	if !ok {
		return video.Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) ListVideos(_ context.Context, q Query) ([]video.Record, error) {
	m.mu.RLock()
	all := make([]video.Record, 0, len(m.videos))
	for _, rec := range m.videos {
		all = append(all, rec)
	}
	m.mu.RUnlock()
	return Select(all, q), nil
}

// Select applies q to an in-memory slice. The input is not modified.
func Select(records []video.Record, q Query) []video.Record {
	q = q.Normalized()
	out := make([]video.Record, 0, len(records))
	for _, rec := range records {
		if q.Category != "" && rec.Category != q.Category {
			continue
		}
		if q.ExcludeID != "" && rec.ID == q.ExcludeID {
			continue
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b video.Record) int {
		if q.Order == OrderMostViewed && a.Views != b.Views {
			if a.Views > b.Views {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func (m *MemoryStore) IncrementViews(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.videos[id]
	if !ok {
		return 0, ErrNotFound
	}
	rec.Views++
	m.videos[id] = rec
	return rec.Views, nil
}

func (m *MemoryStore) AdjustLikes(_ context.Context, id string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.videos[id]
	if !ok {
		return 0, ErrNotFound
	}
	rec.Likes = max(rec.Likes+delta, 0)
	m.videos[id] = rec
	return rec.Likes, nil
}

func (m *MemoryStore) AddComment(_ context.Context, c video.Comment) (video.Comment, error) {
	c = stampComment(c)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.videos[c.VideoID]; !ok {
		return video.Comment{}, ErrNotFound
	}
	m.comments[c.VideoID] = append(m.comments[c.VideoID], c)
	return c, nil
}

func (m *MemoryStore) ListComments(_ context.Context, videoID string, limit int) ([]video.Comment, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	m.mu.RLock()
	out := slices.Clone(m.comments[videoID])
	m.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b video.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
