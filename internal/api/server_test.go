// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/bookmarks"
	"github.com/ManuGH/vidshare/internal/cache"
	"github.com/ManuGH/vidshare/internal/config"
	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/feed"
	"github.com/ManuGH/vidshare/internal/ratelimit"
	"github.com/ManuGH/vidshare/internal/realtime"
	"github.com/ManuGH/vidshare/internal/store"
)

const testToken = "test-token-0123456789"

type fixture struct {
	srv   *Server
	store *store.MemoryStore
	bus   *realtime.MemoryBus
	marks *bookmarks.MemoryStore
}

func newFixture(t *testing.T, uploads *ratelimit.Limiter) *fixture {
	t.Helper()
	if uploads == nil {
		uploads = ratelimit.New(ratelimit.Config{GlobalRate: 100, GlobalBurst: 100, PerUserRate: 100, PerUserBurst: 100})
	}
	cfg := config.Defaults()
	cfg.API.Tokens = map[string]auth.User{
		testToken: {ID: "u1", Name: "Ada", Avatar: "https://cdn.example/ada.png"},
	}
	f := &fixture{
		store: store.NewMemory(),
		bus:   realtime.NewMemory(),
		marks: bookmarks.NewMemory(),
	}
	t.Cleanup(func() { _ = f.bus.Close() })
	f.srv = New(cfg, Deps{
		Store:     f.store,
		Feed:      feed.New(f.store, cache.Nop{}, feed.Config{}),
		Bus:       f.bus,
		Bookmarks: f.marks,
		Uploads:   uploads,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, signedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if signedIn {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) seed(t *testing.T, title, category string) video.Record {
	t.Helper()
	src, err := video.NewSource(video.KindDirectLink, "https://cdn.example/"+title+".mp4")
	require.NoError(t, err)
	rec, err := f.store.CreateVideo(context.Background(), video.Draft{
		Title:        title,
		Source:       src,
		ThumbnailURL: "https://cdn.example/thumb.jpg",
		Category:     video.Category(category),
		UploaderID:   "u2",
		UploaderName: "Grace",
	})
	require.NoError(t, err)
	return rec
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListVideos(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("empty store falls back to demo set", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/videos", "", false)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[feed.Page](t, w)
		assert.Equal(t, feed.OriginFallback, page.Origin)
		require.NotEmpty(t, page.Videos)
		assert.True(t, feed.IsDemoID(page.Videos[0].ID))
	})

	t.Run("stored videos", func(t *testing.T) {
		rec := f.seed(t, "match", "sport")
		w := f.do(t, http.MethodGet, "/api/v1/videos?category=sport&order=newest&limit=10", "", false)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[feed.Page](t, w)
		assert.Equal(t, feed.OriginStore, page.Origin)
		require.Len(t, page.Videos, 1)
		assert.Equal(t, rec.ID, page.Videos[0].ID)
	})

	t.Run("bad parameters", func(t *testing.T) {
		for _, q := range []string{"category=cooking", "order=random", "limit=0", "limit=abc"} {
			w := f.do(t, http.MethodGet, "/api/v1/videos?"+q, "", false)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})
}

func TestGetVideo(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.seed(t, "concert", "music")

	w := f.do(t, http.MethodGet, "/api/v1/videos/"+rec.ID, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Video       video.Record `json:"video"`
		Player      struct{ Mode string }
		Saved       bool   `json:"saved"`
		DownloadURL string `json:"download_url"`
	}](t, w)
	assert.Equal(t, int64(1), body.Video.Views)
	assert.Equal(t, "native", body.Player.Mode)
	assert.Equal(t, "https://cdn.example/concert.mp4", body.DownloadURL)
	assert.False(t, body.Saved)

	w = f.do(t, http.MethodGet, "/api/v1/videos/"+rec.ID, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[videoResponse](t, w).Video.Views)

	t.Run("demo id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/videos/demo-1", "", false)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "demo-1", decode[videoResponse](t, w).Video.ID)
	})

	t.Run("missing", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/videos/nope", "", false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateVideo(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("guest is refused", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/videos", `{"title":"x","url":"https://cdn.example/x.mp4"}`, false)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		body := decode[errorBody](t, w)
		assert.Equal(t, "auth_required", body.Error)
		assert.Equal(t, string(auth.ActionUpload), body.Action)
	})

	t.Run("admission rejections", func(t *testing.T) {
		cases := []struct {
			body   string
			reason string
			field  string
		}{
			{`{"title":"clip","url":"ftp://cdn.example/x.mp4"}`, "BAD_SCHEME", "url"},
			{`{"title":"clip","kind":"embed","url":"https://evil.example/embed/1"}`, "DOMAIN_NOT_ALLOWED", "url"},
			{`{"title":"  ","url":"https://cdn.example/x.mp4"}`, "EMPTY", "title"},
		}
		for _, tc := range cases {
			w := f.do(t, http.MethodPost, "/api/v1/videos", tc.body, true)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, tc.body)
			body := decode[errorBody](t, w)
			assert.Equal(t, tc.reason, body.Error)
			assert.Equal(t, tc.field, body.Field)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/videos", `{"title":"x","views":100}`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admitted upload is stored and announced", func(t *testing.T) {
		sub, err := f.bus.Subscribe(context.Background())
		require.NoError(t, err)
		defer func() { _ = sub.Close() }()

		w := f.do(t, http.MethodPost, "/api/v1/videos",
			`{"title":"Live football final","kind":"embed","url":"https://youtu.be/dQw4w9WgXcQ"}`, true)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		rec := decode[video.Record](t, w)
		assert.Equal(t, "/api/v1/videos/"+rec.ID, w.Header().Get("Location"))
		assert.Equal(t, "u1", rec.UploaderID)
		assert.Equal(t, "Ada", rec.UploaderName)
		assert.Equal(t, video.KindEmbed, rec.Kind())
		assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", rec.ThumbnailURL)
		assert.Zero(t, rec.Views)

		select {
		case ev := <-sub.C():
			assert.Equal(t, rec.ID, ev.Video.ID)
		case <-time.After(time.Second):
			t.Fatal("no video.created event")
		}

		stored, err := f.store.GetVideo(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Title, stored.Title)
	})
}

func TestCreateVideoRateLimited(t *testing.T) {
	f := newFixture(t, ratelimit.New(ratelimit.Config{
		GlobalRate:   100,
		GlobalBurst:  100,
		PerUserRate:  rate.Every(time.Hour),
		PerUserBurst: 1,
	}))
	body := `{"title":"clip","url":"https://cdn.example/clip.mp4"}`

	w := f.do(t, http.MethodPost, "/api/v1/videos", body, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/videos", body, true)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestPreview(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/v1/ingest/preview",
		`{"title":"Movie trailer","kind":"embed","url":"https://vimeo.com/76979871"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[previewResponse](t, w)
	assert.True(t, resp.Admitted)
	assert.Nil(t, resp.Rejection)
	assert.Equal(t, "vimeo", string(resp.Classification.Platform))
	assert.Equal(t, "76979871", resp.Classification.ID)
	assert.Equal(t, video.CategoryMovies, resp.Category)

	w = f.do(t, http.MethodPost, "/api/v1/ingest/preview",
		`{"kind":"embed","url":"https://evil.example/v/1"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[previewResponse](t, w)
	assert.False(t, resp.Admitted)
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, "DOMAIN_NOT_ALLOWED", string(resp.Rejection.Reason))

	w = f.do(t, http.MethodPost, "/api/v1/ingest/preview",
		`{"kind":"embed","url":"<div>not an iframe</div>"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[previewResponse](t, w)
	assert.False(t, resp.Admitted)
	require.NotNil(t, resp.Rejection)
	assert.Equal(t, "MALFORMED", string(resp.Rejection.Reason))
}

func TestAdjustLikes(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.seed(t, "song", "music")
	path := "/api/v1/videos/" + rec.ID + "/likes"

	w := f.do(t, http.MethodPost, path, `{"delta":1}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, path, `{"delta":1}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[likeResponse](t, w).Likes)

	w = f.do(t, http.MethodPost, path, `{"delta":-1}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[likeResponse](t, w).Likes)

	w = f.do(t, http.MethodPost, path, `{"delta":5}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/videos/nope/likes", `{"delta":1}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.seed(t, "talk", "live")
	path := "/api/v1/videos/" + rec.ID + "/comments"

	w := f.do(t, http.MethodPost, path, `{"text":"hi"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, path, `{"text":"   "}`, true)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "comment", decode[errorBody](t, w).Field)

	w = f.do(t, http.MethodPost, path, `{"text":"  great talk  "}`, true)
	require.Equal(t, http.StatusCreated, w.Code)
	c := decode[video.Comment](t, w)
	assert.Equal(t, "great talk", c.Text)
	assert.Equal(t, "Ada", c.Username)
	assert.NotEmpty(t, c.ID)

	w = f.do(t, http.MethodGet, path, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[commentsResponse](t, w)
	require.Len(t, list.Comments, 1)
	assert.Equal(t, c.ID, list.Comments[0].ID)

	w = f.do(t, http.MethodGet, path+"?limit=1000", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookmarks(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.seed(t, "doc", "movies")

	w := f.do(t, http.MethodGet, "/api/v1/bookmarks", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPut, "/api/v1/bookmarks/"+rec.ID, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rec.ID, decode[bookmarks.Bookmark](t, w).Video.ID)

	w = f.do(t, http.MethodPut, "/api/v1/bookmarks/demo-2", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/bookmarks", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[bookmarksResponse](t, w)
	require.Len(t, list.Bookmarks, 2)
	assert.Equal(t, rec.ID, list.Bookmarks[0].Video.ID)

	w = f.do(t, http.MethodGet, "/api/v1/videos/"+rec.ID, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[videoResponse](t, w).Saved)

	w = f.do(t, http.MethodDelete, "/api/v1/bookmarks/"+rec.ID, "", true)
	require.Equal(t, http.StatusNoContent, w.Code)

	saved, err := f.marks.IsSaved(context.Background(), "u1", rec.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	w = f.do(t, http.MethodPut, "/api/v1/bookmarks/nope", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsStream(t *testing.T) {
	f := newFixture(t, nil)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "retry: 3000", lines.Text())

	rec := f.seed(t, "stream", "live")
	// The subscription exists once the retry line has been flushed.
	require.NoError(t, f.bus.Publish(ctx, realtime.NewVideoCreated(rec)))

	var got []string
	for lines.Scan() {
		line := lines.Text()
		if line == "" && len(got) > 0 {
			break
		}
		if line != "" {
			got = append(got, line)
		}
	}
	require.Len(t, got, 3)
	assert.Equal(t, "event: "+realtime.EventVideoCreated, got[0])
	assert.Equal(t, "id: "+rec.ID, got[1])

	var ev realtime.VideoCreated
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(got[2], "data: ")), &ev))
	assert.Equal(t, rec.ID, ev.Video.ID)
	assert.Equal(t, rec.Title, ev.Video.Title)
}

func TestEventsDisabled(t *testing.T) {
	srv := New(config.Defaults(), Deps{
		Store: store.NewMemory(),
		Feed:  feed.New(store.NewMemory(), nil, feed.Config{}),
	})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/readyz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	f.do(t, http.MethodGet, "/api/v1/videos", "", false)
	w = f.do(t, http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vidshare_http_request_duration_seconds")
}
