// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/vidshare/internal/admission"
	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/ingest"
	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/media/platform"
	"github.com/ManuGH/vidshare/internal/metrics"
	"github.com/ManuGH/vidshare/internal/player"
	"github.com/ManuGH/vidshare/internal/realtime"
	"github.com/ManuGH/vidshare/internal/telemetry"
	"github.com/ManuGH/vidshare/internal/watch"
)

// videoResponse is the body of GET /videos/{id}.
type videoResponse struct {
	Video       video.Record      `json:"video"`
	Player      player.Descriptor `json:"player"`
	Related     []video.Record    `json:"related"`
	Saved       bool              `json:"saved"`
	DownloadURL string            `json:"download_url,omitempty"`
}

// uploadRequest is the body of POST /videos.
type uploadRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Kind         string `json:"kind"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// previewRequest is the body of POST /ingest/preview.
type previewRequest struct {
	Title string `json:"title"`
	Kind  string `json:"kind"`
	URL   string `json:"url"`
}

type rejectionBody struct {
	Field  string           `json:"field"`
	Reason admission.Reason `json:"reason"`
}

// previewResponse reports what an upload of the request would become.
type previewResponse struct {
	Admitted       bool            `json:"admitted"`
	Rejection      *rejectionBody  `json:"rejection,omitempty"`
	Classification platform.Result `json:"classification"`
	Locator        string          `json:"locator,omitempty"`
	Thumbnail      string          `json:"thumbnail"`
	Thumbnails     []string        `json:"thumbnails"`
	Category       video.Category  `json:"category,omitempty"`
}

type likeRequest struct {
	Delta int64 `json:"delta"`
}

type likeResponse struct {
	Likes int64 `json:"likes"`
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := params.Query()
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, span := telemetry.Tracer("api").Start(r.Context(), "feed.load")
	defer span.End()

	page := s.deps.Feed.Home(ctx, q)
	span.SetAttributes(telemetry.FeedAttributes(string(page.Origin), string(q.Category), len(page.Videos))...)
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) watchDeps() watch.Deps {
	return watch.Deps{Store: s.deps.Store, Bookmarks: s.deps.Bookmarks, Now: s.now}
}

// lookup returns the stored record, or the built-in one for demo ids.
func (s *Server) lookup(ctx context.Context, id string) (video.Record, error) {
	rec, _, err := watch.Lookup(ctx, s.watchDeps(), id)
	return rec, err
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := log.ContextWithVideoID(r.Context(), id)

	loaded, err := watch.Load(ctx, s.watchDeps(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec := loaded.Record

	desc, err := player.Describe(rec.Source)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := videoResponse{
		Video:   rec,
		Player:  desc,
		Related: s.deps.Feed.Related(ctx, rec),
		Saved:   loaded.Saved,
	}
	if src, ok := rec.Source.(video.DirectLink); ok {
		resp.DownloadURL = src.URL
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseKind(raw string) (video.Kind, error) {
	if strings.TrimSpace(raw) == "" {
		return video.KindDirectLink, nil
	}
	kind, err := video.ParseKind(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return kind, nil
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.Tracer("api").Start(r.Context(), "upload")
	defer span.End()
	logger := log.WithComponentFromContext(ctx, "api")

	sess := auth.FromContext(ctx)
	if err := sess.Gate(auth.ActionUpload); err != nil {
		s.deps.Audit.AuthRequired(ctx, r.RemoteAddr, string(auth.ActionUpload))
		writeError(w, r, err)
		return
	}

	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !s.deps.Uploads.Allow(sess.UserID()) {
		metrics.RecordUpload("rate_limited", string(kind))
		s.deps.Audit.RateLimitExceeded(ctx, r.RemoteAddr, "upload")
		writeError(w, r, errRateLimited)
		return
	}

	prepared, err := ingest.Prepare(ingest.Request{
		Title:           req.Title,
		Description:     req.Description,
		Kind:            kind,
		URL:             req.URL,
		CustomThumbnail: req.ThumbnailURL,
		Uploader: ingest.Uploader{
			ID:     sess.User.ID,
			Name:   sess.User.Name,
			Avatar: sess.User.Avatar,
		},
	})
	if err != nil {
		var rej *admission.Rejection
		if errors.As(err, &rej) {
			metrics.RecordUpload("rejected", string(kind))
			metrics.RecordAdmissionRejection(rej.Field, string(rej.Reason))
			telemetry.RecordAdmission(ctx, telemetry.AdmissionRejected, rej.Field, string(rej.Reason))
			span.SetAttributes(telemetry.UploadAttributes("rejected", string(rej.Reason))...)
			s.deps.Audit.UploadRejected(ctx, rej.Field, string(rej.Reason))
			logger.Debug().
				Str(log.FieldEvent, "upload.rejected").
				Str(log.FieldReason, string(rej.Reason)).
				Msg("upload refused by admission")
		}
		writeError(w, r, err)
		return
	}
	telemetry.RecordAdmission(ctx, telemetry.AdmissionAccepted, "", "")
	metrics.RecordClassification(string(prepared.Classification.Platform))
	span.SetAttributes(telemetry.ClassificationAttributes(prepared.Classification)...)

	rec, err := s.deps.Store.CreateVideo(ctx, prepared.Draft)
	if err != nil {
		metrics.RecordUpload("failed", string(kind))
		span.SetStatus(codes.Error, "create video")
		span.SetAttributes(telemetry.ErrorAttributes("storage")...)
		writeError(w, r, fmt.Errorf("create video: %w", err))
		return
	}
	metrics.RecordUpload("admitted", string(kind))
	span.SetAttributes(telemetry.VideoAttributes(rec)...)
	span.SetAttributes(telemetry.UploadAttributes("admitted", "")...)
	s.deps.Audit.UploadAdmitted(ctx, rec.ID, string(kind), string(prepared.Classification.Platform))

	if s.deps.Bus != nil {
		if err := s.deps.Bus.Publish(ctx, realtime.NewVideoCreated(rec)); err != nil {
			logger.Warn().Err(err).
				Str(log.FieldEvent, "upload.announce_failed").
				Str(log.FieldVideoID, rec.ID).
				Msg("video stored but not announced")
		}
	}

	logger.Info().
		Str(log.FieldEvent, "upload.admitted").
		Str(log.FieldVideoID, rec.ID).
		Str(log.FieldSourceKind, string(kind)).
		Str(log.FieldPlatform, string(prepared.Classification.Platform)).
		Msg("video uploaded")

	w.Header().Set("Location", "/api/v1/videos/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}

	locator, admitErr := ingest.ResolveLocator(req.URL, kind)
	class := platform.Classify(locator)
	resp := previewResponse{
		Admitted:       true,
		Classification: class,
		Locator:        locator,
		Thumbnail:      platform.ResolveThumbnail(class),
		Thumbnails:     platform.ThumbnailCandidates(class),
	}
	if kind == video.KindEmbed {
		if embed, ok := platform.EmbedURL(class); ok {
			resp.Locator = embed
		}
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		resp.Category = ingest.InferCategory(title)
	}
	if admitErr != nil {
		var rej *admission.Rejection
		if !errors.As(admitErr, &rej) {
			writeError(w, r, admitErr)
			return
		}
		resp.Admitted = false
		resp.Rejection = &rejectionBody{Field: rej.Field, Reason: rej.Reason}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdjustLikes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()
	if err := auth.FromContext(ctx).Gate(auth.ActionLike); err != nil {
		s.deps.Audit.AuthRequired(ctx, r.RemoteAddr, string(auth.ActionLike))
		writeError(w, r, err)
		return
	}

	var req likeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		writeError(w, r, fmt.Errorf("%w: delta must be 1 or -1", errBadRequest))
		return
	}

	likes, err := s.deps.Store.AdjustLikes(ctx, id, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.RecordLikeAdjustment(req.Delta)
	writeJSON(w, http.StatusOK, likeResponse{Likes: likes})
}
