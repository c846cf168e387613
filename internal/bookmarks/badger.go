// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

// BadgerStore keeps one key per bookmark: "bm:<owner>\x00<video id>".
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a store in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open bookmarks db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func ownerPrefix(owner string) []byte {
	return []byte("bm:" + owner + "\x00")
}

func bookmarkKey(owner, videoID string) []byte {
	return append(ownerPrefix(owner), videoID...)
}

func (s *BadgerStore) Save(_ context.Context, owner string, rec video.Record) (Bookmark, error) {
	if err := checkKey(owner, rec.ID); err != nil {
		return Bookmark{}, err
	}
	bm := Bookmark{Video: rec, SavedAt: nowFunc()}
	buf, err := json.Marshal(bm)
	if err != nil {
		return Bookmark{}, fmt.Errorf("encode bookmark: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bookmarkKey(owner, rec.ID), buf)
	})
	if err != nil {
		return Bookmark{}, fmt.Errorf("save bookmark: %w", err)
	}
	return bm, nil
}

func (s *BadgerStore) Remove(_ context.Context, owner, videoID string) error {
	if err := checkKey(owner, videoID); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(bookmarkKey(owner, videoID))
	})
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	return nil
}

func (s *BadgerStore) IsSaved(_ context.Context, owner, videoID string) (bool, error) {
	if err := checkKey(owner, videoID); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(bookmarkKey(owner, videoID))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("lookup bookmark: %w", err)
	}
}

func (s *BadgerStore) List(_ context.Context, owner string) ([]Bookmark, error) {
	out := []Bookmark{}
	prefix := ownerPrefix(owner)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 64, Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var bm Bookmark
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &bm)
			}); err != nil {
				return err
			}
			out = append(out, bm)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	sortSaved(out)
	return out, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
