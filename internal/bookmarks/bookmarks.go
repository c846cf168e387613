// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bookmarks keeps each viewer's saved videos. A bookmark holds a
// snapshot of the record as it was when saved; saving again replaces it.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

var (
	ErrNoOwner = errors.New("bookmarks: owner required")
	ErrNoVideo = errors.New("bookmarks: video id required")
)

// Bookmark is one saved video.
type Bookmark struct {
	Video   video.Record `json:"video"`
	SavedAt time.Time    `json:"saved_at"`
}

// Store persists bookmarks per owner. Writes are last-write-wins.
type Store interface {
	Save(ctx context.Context, owner string, rec video.Record) (Bookmark, error)
	// Remove is a no-op for videos that are not saved.
	Remove(ctx context.Context, owner, videoID string) error
	IsSaved(ctx context.Context, owner, videoID string) (bool, error)
	// List returns bookmarks in the order they were last saved.
	List(ctx context.Context, owner string) ([]Bookmark, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Open creates the configured backend. path is a file for "file" and a
// directory for "badger".
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return OpenFile(path)
	case BackendBadger:
		return OpenBadger(path)
	default:
		return nil, fmt.Errorf("unknown bookmarks backend: %s", backend)
	}
}

func checkKey(owner, videoID string) error {
	if strings.TrimSpace(owner) == "" {
		return ErrNoOwner
	}
	if strings.TrimSpace(videoID) == "" {
		return ErrNoVideo
	}
	return nil
}

// sortSaved orders by save time, oldest first.
func sortSaved(list []Bookmark) {
	slices.SortStableFunc(list, func(a, b Bookmark) int {
		if c := a.SavedAt.Compare(b.SavedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Video.ID, b.Video.ID)
	})
}

// upsert drops any older copy of bm's video and appends bm.
func upsert(list []Bookmark, bm Bookmark) []Bookmark {
	list = remove(list, bm.Video.ID)
	return append(list, bm)
}

func remove(list []Bookmark, videoID string) []Bookmark {
	return slices.DeleteFunc(list, func(b Bookmark) bool { return b.Video.ID == videoID })
}

var nowFunc = func() time.Time { return time.Now().UTC() }
