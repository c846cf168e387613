// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package watch drives one mounted watch view: the record, its player
// surface, and the viewer's like, save, follow and comment interactions.
package watch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/vidshare/internal/admission"
	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/bookmarks"
	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/engagement"
	"github.com/ManuGH/vidshare/internal/feed"
	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/metrics"
	"github.com/ManuGH/vidshare/internal/player"
	"github.com/ManuGH/vidshare/internal/store"
)

// CommentPageSize bounds the comments loaded with a view.
const CommentPageSize = 50

// ErrNotDownloadable is returned for embeds, which have no media file.
var ErrNotDownloadable = errors.New("watch: embedded videos cannot be downloaded")

// Store is the storage the view reads and writes.
type Store interface {
	GetVideo(ctx context.Context, id string) (video.Record, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	AdjustLikes(ctx context.Context, id string, delta int64) (int64, error)
	AddComment(ctx context.Context, c video.Comment) (video.Comment, error)
	ListComments(ctx context.Context, videoID string, limit int) ([]video.Comment, error)
}

// Related lists videos shown next to the player.
type Related interface {
	Related(ctx context.Context, rec video.Record) []video.Record
}

// Follows records which creators a viewer follows.
type Follows interface {
	Follow(ctx context.Context, followerID, creatorID string) error
	Unfollow(ctx context.Context, followerID, creatorID string) error
}

// Deps are the collaborators of a view. A nil Follows keeps the follow
// button local to the view.
type Deps struct {
	Store     Store
	Bookmarks bookmarks.Store
	Follows   Follows
	Related   Related
	Now       func() time.Time
}

// Loaded is a record as a watch page presents it.
type Loaded struct {
	Record video.Record
	Demo   bool
	// Saved is the signed-in viewer's bookmark state; always false for guests.
	Saved bool
}

// View is one mounted watch page. Close must be called when the viewer
// navigates away.
type View struct {
	deps    Deps
	record  video.Record
	surface player.Surface
	related []video.Record

	like      *engagement.Like
	saved     *engagement.Cell[bool]
	following *engagement.Cell[bool]
	comments *engagement.Cell[[]video.Comment]

	closeOnce sync.Once
}

// Open loads id, counts a view and mounts the player. Demo records are
// served without touching storage. A failed view count or comment load is
// logged and does not fail the view.
func Open(ctx context.Context, deps Deps, id string, opts player.Options) (*View, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := log.WithComponentFromContext(ctx, "watch")

	loaded, err := Load(ctx, deps, id)
	if err != nil {
		return nil, err
	}
	rec, demo := loaded.Record, loaded.Demo

	if opts.Metadata.Title == "" {
		opts.Metadata = player.Metadata{
			Title:   rec.Title,
			Artwork: []player.Artwork{{Src: rec.ThumbnailURL, Sizes: "512x512", Type: "image/jpeg"}},
		}
	}
	surface, err := player.Open(rec.Source, opts)
	if err != nil {
		return nil, fmt.Errorf("mount player for %s: %w", rec.ID, err)
	}

	v := &View{
		deps:      deps,
		record:    rec,
		surface:   surface,
		like:      engagement.NewLike(rec.ID, rec.Likes, deps.Store),
		saved:     engagement.NewCell(loaded.Saved),
		following: engagement.NewCell(false),
		comments:  engagement.NewCell([]video.Comment{}),
	}

	if deps.Related != nil {
		v.related = deps.Related.Related(ctx, rec)
	}
	if !demo {
		if list, err := deps.Store.ListComments(ctx, rec.ID, CommentPageSize); err == nil {
			v.comments.Store(list)
		} else {
			logger.Debug().Err(err).Str(log.FieldVideoID, rec.ID).Msg("comments unavailable")
		}
	}
	logger.Debug().
		Str(log.FieldEvent, "watch.opened").
		Str(log.FieldVideoID, rec.ID).
		Str(log.FieldSourceKind, string(rec.Kind())).
		Msg("watch view mounted")
	return v, nil
}

// Load resolves id, counts a view and reads the viewer's bookmark state.
// Demo records are served without touching storage. A failed view count or
// bookmark lookup is logged and does not fail the load.
func Load(ctx context.Context, deps Deps, id string) (Loaded, error) {
	logger := log.WithComponentFromContext(ctx, "watch")

	rec, demo, err := Lookup(ctx, deps, id)
	if err != nil {
		return Loaded{}, err
	}
	out := Loaded{Record: rec, Demo: demo}

	if !demo {
		if views, err := deps.Store.IncrementViews(ctx, rec.ID); err != nil {
			logger.Warn().Err(err).
				Str(log.FieldEvent, "watch.view_count_failed").
				Str(log.FieldVideoID, rec.ID).
				Msg("view not counted")
		} else {
			out.Record.Views = views
			metrics.RecordView()
		}
	}

	if owner := auth.FromContext(ctx).UserID(); owner != "" && deps.Bookmarks != nil {
		saved, err := deps.Bookmarks.IsSaved(ctx, owner, rec.ID)
		if err != nil {
			logger.Warn().Err(err).
				Str(log.FieldEvent, "bookmarks.lookup_failed").
				Str(log.FieldVideoID, rec.ID).
				Msg("saved state unknown")
		}
		out.Saved = saved
	}
	return out, nil
}

// Lookup returns the stored record, or the built-in one for demo ids. The
// boolean reports a demo record.
func Lookup(ctx context.Context, deps Deps, id string) (video.Record, bool, error) {
	rec, err := deps.Store.GetVideo(ctx, id)
	if err == nil {
		return rec, false, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		now := time.Now
		if deps.Now != nil {
			now = deps.Now
		}
		if demo, ok := feed.DemoVideo(id, now()); ok {
			return demo, true, nil
		}
	}
	return video.Record{}, false, err
}

// Record returns the record as loaded, with the view already counted.
func (v *View) Record() video.Record { return v.record }

// Surface is the mounted player.
func (v *View) Surface() player.Surface { return v.surface }

// Engine returns the playback engine for direct links.
func (v *View) Engine() (*player.Engine, bool) {
	e, ok := v.surface.(*player.Engine)
	return e, ok
}

// RelatedVideos lists the videos shown beside the player.
func (v *View) RelatedVideos() []video.Record { return slices.Clone(v.related) }

// Likes returns the like button state.
func (v *View) Likes() engagement.LikeState { return v.like.State() }

// ToggleLike flips the like button optimistically.
func (v *View) ToggleLike(ctx context.Context) (engagement.LikeState, error) {
	return v.like.Toggle(ctx)
}

// Saved reports whether the viewer has bookmarked the video.
func (v *View) Saved() bool { return v.saved.Load() }

// ToggleSave bookmarks or un-bookmarks the video optimistically.
func (v *View) ToggleSave(ctx context.Context) (bool, error) {
	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionSave); err != nil {
		return v.Saved(), err
	}
	owner := sess.UserID()

	return engagement.Optimistic(ctx, "bookmark", v.saved,
		func(saved bool) bool { return !saved },
		func(ctx context.Context, saved bool) error {
			if v.deps.Bookmarks == nil {
				return errors.New("bookmarks unavailable")
			}
			if saved {
				_, err := v.deps.Bookmarks.Save(ctx, owner, v.record)
				return err
			}
			return v.deps.Bookmarks.Remove(ctx, owner, v.record.ID)
		})
}

// Following reports whether the viewer follows the uploader.
func (v *View) Following() bool { return v.following.Load() }

// ToggleFollow follows or unfollows the uploader optimistically.
func (v *View) ToggleFollow(ctx context.Context) (bool, error) {
	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionFollow); err != nil {
		return v.Following(), err
	}
	follower, creator := sess.UserID(), v.record.UploaderID

	return engagement.Optimistic(ctx, "follow", v.following,
		func(following bool) bool { return !following },
		func(ctx context.Context, following bool) error {
			if v.deps.Follows == nil {
				return nil
			}
			if following {
				return v.deps.Follows.Follow(ctx, follower, creator)
			}
			return v.deps.Follows.Unfollow(ctx, follower, creator)
		})
}

// Comments returns the loaded comments, newest first.
func (v *View) Comments() []video.Comment { return slices.Clone(v.comments.Load()) }

// Comment posts text. The comment is shown immediately and replaced by the
// stored copy once storage accepts it.
func (v *View) Comment(ctx context.Context, text string) (video.Comment, error) {
	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionComment); err != nil {
		return video.Comment{}, err
	}
	text = strings.TrimSpace(text)
	if err := admission.ValidateComment(text); err != nil {
		return video.Comment{}, err
	}

	pending := video.Comment{
		ID:         "pending-" + uuid.NewString(),
		VideoID:    v.record.ID,
		UserID:     sess.User.ID,
		Username:   sess.User.Name,
		UserAvatar: sess.User.Avatar,
		Text:       text,
		CreatedAt:  v.deps.Now(),
	}

	var stored video.Comment
	_, err := engagement.Reconcile(ctx, "comment", v.comments,
		func(list []video.Comment) []video.Comment {
			return append([]video.Comment{pending}, list...)
		},
		func(ctx context.Context, list []video.Comment) ([]video.Comment, error) {
			draft := pending
			draft.ID, draft.CreatedAt = "", time.Time{}
			c, err := v.deps.Store.AddComment(ctx, draft)
			if err != nil {
				return list, err
			}
			stored = c
			return replaceComment(list, pending.ID, c), nil
		})
	if err != nil {
		return video.Comment{}, err
	}
	return stored, nil
}

// replaceComment swaps the pending copy for the stored one in the
// list the remote call saw.
func replaceComment(list []video.Comment, pendingID string, c video.Comment) []video.Comment {
	out := slices.Clone(list)
	for i := range out {
		if out[i].ID == pendingID {
			out[i] = c
			return out
		}
	}
	return append([]video.Comment{c}, out...)
}

// DownloadURL returns the media file of a direct link.
func (v *View) DownloadURL() (string, error) {
	if src, ok := v.record.Source.(video.DirectLink); ok {
		return src.URL, nil
	}
	return "", ErrNotDownloadable
}

// Close unmounts the player, detaching media-session handlers and the
// controls timer. Later calls are no-ops.
func (v *View) Close() {
	v.closeOnce.Do(v.surface.Close)
}
