// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bookmarks

import (
	"context"
	"slices"
	"sync"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

// MemoryStore keeps bookmarks in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string][]Bookmark
}

// NewMemory returns an empty store.
func NewMemory() *MemoryStore {
	return &MemoryStore{owners: make(map[string][]Bookmark)}
}

func (m *MemoryStore) Save(_ context.Context, owner string, rec video.Record) (Bookmark, error) {
	if err := checkKey(owner, rec.ID); err != nil {
		return Bookmark{}, err
	}
	bm := Bookmark{Video: rec, SavedAt: nowFunc()}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[owner] = upsert(m.owners[owner], bm)
	return bm, nil
}

func (m *MemoryStore) Remove(_ context.Context, owner, videoID string) error {
	if err := checkKey(owner, videoID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[owner] = remove(m.owners[owner], videoID)
	return nil
}

func (m *MemoryStore) IsSaved(_ context.Context, owner, videoID string) (bool, error) {
	if err := checkKey(owner, videoID); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.ContainsFunc(m.owners[owner], func(b Bookmark) bool { return b.Video.ID == videoID }), nil
}

func (m *MemoryStore) List(_ context.Context, owner string) ([]Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Bookmark{}, m.owners[owner]...), nil
}

func (m *MemoryStore) Close() error { return nil }
