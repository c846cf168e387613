// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/log"
)

// FileStore keeps every owner's bookmarks in one JSON document that is
// rewritten atomically after each change.
type FileStore struct {
	mu     sync.Mutex
	path   string
	owners map[string][]Bookmark
}

// OpenFile loads path, treating a missing file as empty.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("bookmarks: file path required")
	}
	s := &FileStore{path: path, owners: make(map[string][]Bookmark)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.owners); err != nil {
		return nil, fmt.Errorf("parse bookmarks %s: %w", path, err)
	}
	for owner := range s.owners {
		sortSaved(s.owners[owner])
	}
	return s, nil
}

func (s *FileStore) Save(ctx context.Context, owner string, rec video.Record) (Bookmark, error) {
	if err := checkKey(owner, rec.ID); err != nil {
		return Bookmark{}, err
	}
	bm := Bookmark{Video: rec, SavedAt: nowFunc()}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.owners[owner]
	s.owners[owner] = upsert(slices.Clone(prev), bm)
	if err := s.flushLocked(ctx); err != nil {
		s.owners[owner] = prev
		return Bookmark{}, err
	}
	return bm, nil
}

func (s *FileStore) Remove(ctx context.Context, owner, videoID string) error {
	if err := checkKey(owner, videoID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.owners[owner]
	next := remove(slices.Clone(prev), videoID)
	if len(next) == len(prev) {
		return nil
	}
	s.owners[owner] = next
	if err := s.flushLocked(ctx); err != nil {
		s.owners[owner] = prev
		return err
	}
	return nil
}

func (s *FileStore) IsSaved(_ context.Context, owner, videoID string) (bool, error) {
	if err := checkKey(owner, videoID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.owners[owner], func(b Bookmark) bool { return b.Video.ID == videoID }), nil
}

func (s *FileStore) List(_ context.Context, owner string) ([]Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Bookmark{}, s.owners[owner]...), nil
}

func (s *FileStore) Close() error { return nil }

// flushLocked writes the whole document through a pending file so readers
// never see a partial write. Caller holds mu.
func (s *FileStore) flushLocked(ctx context.Context) error {
	logger := log.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create bookmarks dir: %w", err)
	}
	data, err := json.Marshal(s.owners)
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}

	pending, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending bookmarks file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending bookmarks file")
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace bookmarks file: %w", err)
	}
	return nil
}
