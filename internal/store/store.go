// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists video records and comments. Counter updates are
// single atomic statements; nothing reads a counter, adds to it and writes it
// back.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

var (
	ErrNotFound     = errors.New("store: not found")
	ErrInvalidDraft = errors.New("store: invalid draft")
)

// Order selects the sort of ListVideos.
type Order string

const (
	OrderNewest     Order = "newest"
	OrderMostViewed Order = "most_viewed"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query filters ListVideos. Zero values mean "no filter".
type Query struct {
	Category  video.Category
	ExcludeID string
	Order     Order
	Limit     int
}

// Normalized applies the default order and clamps Limit.
func (q Query) Normalized() Query {
	if q.Order != OrderMostViewed {
		q.Order = OrderNewest
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	return q
}

// Store is the storage collaborator.
type Store interface {
	CreateVideo(ctx context.Context, d video.Draft) (video.Record, error)
	GetVideo(ctx context.Context, id string) (video.Record, error)
	ListVideos(ctx context.Context, q Query) ([]video.Record, error)
	// IncrementViews adds one view and returns the new total.
	IncrementViews(ctx context.Context, id string) (int64, error)
	// AdjustLikes adds delta, never going below zero, and returns the new total.
	AdjustLikes(ctx context.Context, id string, delta int64) (int64, error)

	AddComment(ctx context.Context, c video.Comment) (video.Comment, error)
	ListComments(ctx context.Context, videoID string, limit int) ([]video.Comment, error)

	Ping(ctx context.Context) error
	Close() error
}

func validateDraft(d video.Draft) error {
	if d.Title == "" || d.Source == nil || d.Source.Locator() == "" {
		return ErrInvalidDraft
	}
	return nil
}

// nowFunc is swapped in tests.
var nowFunc = func() time.Time { return time.Now().UTC() }
