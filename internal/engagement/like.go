// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package engagement

import (
	"context"

	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/metrics"
)

// Liker adjusts a video's like counter and returns the stored count.
type Liker interface {
	AdjustLikes(ctx context.Context, id string, delta int64) (int64, error)
}

// LikeState is what the like button shows.
type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// Like drives the like button of one video for one viewer.
type Like struct {
	videoID string
	liker   Liker
	cell    *Cell[LikeState]
}

// NewLike starts from the server's count with the button off.
func NewLike(videoID string, count int64, liker Liker) *Like {
	return &Like{
		videoID: videoID,
		liker:   liker,
		cell:    NewCell(LikeState{Count: max(count, 0)}),
	}
}

// State returns the displayed state.
func (l *Like) State() LikeState {
	return l.cell.Load()
}

// Toggle flips the button. Guests are refused before anything changes.
// On a remote failure the previous state is restored and the returned error
// wraps ErrRemoteFailed.
func (l *Like) Toggle(ctx context.Context) (LikeState, error) {
	if err := auth.FromContext(ctx).Gate(auth.ActionLike); err != nil {
		return l.State(), err
	}

	var delta int64
	apply := func(s LikeState) LikeState {
		delta = 1
		if s.Liked {
			delta = -1
		}
		return LikeState{Liked: !s.Liked, Count: max(s.Count+delta, 0)}
	}
	remote := func(ctx context.Context, next LikeState) (LikeState, error) {
		count, err := l.liker.AdjustLikes(ctx, l.videoID, delta)
		if err != nil {
			return next, err
		}
		metrics.RecordLikeAdjustment(delta)
		return LikeState{Liked: next.Liked, Count: count}, nil
	}
	return Reconcile(ctx, "like", l.cell, apply, remote)
}
