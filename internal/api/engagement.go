// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"strings"

	"github.com/ManuGH/vidshare/internal/admission"
	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/bookmarks"
	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/watch"
)

type commentRequest struct {
	Text string `json:"text"`
}

type commentsResponse struct {
	Comments []video.Comment `json:"comments"`
}

type bookmarksResponse struct {
	Bookmarks []bookmarks.Bookmark `json:"bookmarks"`
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := commentLimit(r, watch.CommentPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := s.deps.Store.ListComments(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if comments == nil {
		comments = []video.Comment{}
	}
	writeJSON(w, http.StatusOK, commentsResponse{Comments: comments})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionComment); err != nil {
		s.deps.Audit.AuthRequired(ctx, r.RemoteAddr, string(auth.ActionComment))
		writeError(w, r, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if err := admission.ValidateComment(text); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.deps.Store.AddComment(ctx, video.Comment{
		VideoID:    id,
		UserID:     sess.User.ID,
		Username:   sess.User.Name,
		UserAvatar: sess.User.Avatar,
		Text:       text,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionSave); err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.deps.Bookmarks.List(ctx, sess.UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []bookmarks.Bookmark{}
	}
	writeJSON(w, http.StatusOK, bookmarksResponse{Bookmarks: list})
}

func (s *Server) handleSaveBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionSave); err != nil {
		s.deps.Audit.AuthRequired(ctx, r.RemoteAddr, string(auth.ActionSave))
		writeError(w, r, err)
		return
	}

	rec, err := s.lookup(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bm, err := s.deps.Bookmarks.Save(ctx, sess.UserID(), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bm)
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionSave); err != nil {
		s.deps.Audit.AuthRequired(ctx, r.RemoteAddr, string(auth.ActionSave))
		writeError(w, r, err)
		return
	}
	if err := s.deps.Bookmarks.Remove(ctx, sess.UserID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
