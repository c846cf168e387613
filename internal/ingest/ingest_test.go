// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidshare/internal/admission"
	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/media/platform"
)

func TestInferCategory(t *testing.T) {
	tests := map[string]video.Category{
		"Best FOOTBALL skills":             video.CategorySport,
		"Live match tonight":               video.CategorySport,
		"24/7 lofi stream":                 video.CategoryLive,
		"LIVE concert":                     video.CategoryLive,
		"Official Trailer":                 video.CategoryMovies,
		"Film review: a movie night":       video.CategoryMovies,
		"Relaxing piano":                   video.CategoryMusic,
		"":                                 video.CategoryMusic,
		"Livestream of the movie premiere": video.CategoryLive,
		"Sunday Football Highlights":       video.CategorySport,
		"Live stream tonight":              video.CategoryLive,
		"Official Movie Trailer":           video.CategoryMovies,
		"Random video":                     video.CategoryMusic,
	}
	for title, want := range tests {
		assert.Equal(t, want, InferCategory(title), title)
	}
}

func TestInferCategoryPriority(t *testing.T) {
	// sport keywords outrank live and movies keywords
	assert.Equal(t, video.CategorySport, InferCategory("live film of the goal"))
	assert.Equal(t, video.CategoryLive, InferCategory("stream a trailer"))
}

func TestExtractEmbedSource(t *testing.T) {
	snippet := `<iframe width="560" height="315" src="https://www.youtube.com/embed/dQw4w9WgXcQ" frameborder="0" allowfullscreen></iframe>`
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", ExtractEmbedSource(snippet))
	assert.Equal(t, "https://player.vimeo.com/video/1", ExtractEmbedSource(`<div><iframe src='https://player.vimeo.com/video/1'/></div>`))
	assert.Equal(t, "https://youtu.be/x", ExtractEmbedSource("  https://youtu.be/x "))
	assert.Empty(t, ExtractEmbedSource(`<div>no frame</div>`))
}

func TestResolveLocator(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind video.Kind
		want admission.Reason
	}{
		{"oversized snippet", `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ" data-x="` + strings.Repeat("a", admission.MaxURLLength) + `"></iframe>`, video.KindEmbed, admission.ReasonTooLong},
		{"markup without iframe", `<div>not an iframe</div>`, video.KindEmbed, admission.ReasonMalformed},
		{"iframe without src", `<iframe width="560"></iframe>`, video.KindEmbed, admission.ReasonMalformed},
		{"blank", "  ", video.KindEmbed, admission.ReasonEmpty},
		{"foreign iframe", `<iframe src="https://evil.example.com/e/1"></iframe>`, video.KindEmbed, admission.ReasonDomainNotAllowed},
		{"markup as direct link", `<iframe src="https://cdn.example.org/a.mp4"></iframe>`, video.KindDirectLink, admission.ReasonMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveLocator(tt.raw, tt.kind)
			reason, ok := admission.ReasonOf(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.want, reason)
		})
	}

	locator, err := ResolveLocator(` <iframe src="https://player.vimeo.com/video/1"></iframe> `, video.KindEmbed)
	require.NoError(t, err)
	assert.Equal(t, "https://player.vimeo.com/video/1", locator)
}

func TestPrepareUploadEndToEnd(t *testing.T) {
	draft, err := PrepareUpload("Championship Final Goal Highlights", "https://youtu.be/dQw4w9WgXcQ", video.KindEmbed)
	require.NoError(t, err)

	assert.Equal(t, video.CategorySport, draft.Category)
	assert.Equal(t, video.KindEmbed, draft.Source.Kind())
	assert.Equal(t, video.Embed{URL: "https://www.youtube.com/embed/dQw4w9WgXcQ"}, draft.Source)
	assert.Contains(t, draft.ThumbnailURL, "dQw4w9WgXcQ")
	assert.Zero(t, draft.Views)
	assert.Zero(t, draft.Likes)
}

func TestPrepareTitleErrorWinsOverURLError(t *testing.T) {
	_, err := PrepareUpload("", "ftp://nope", video.KindEmbed)
	var rej *admission.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "title", rej.Field)
	assert.Equal(t, admission.ReasonEmpty, rej.Reason)

	_, err = PrepareUpload("ok", "ftp://nope", video.KindEmbed)
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "url", rej.Field)
	assert.Equal(t, admission.ReasonBadScheme, rej.Reason)
}

func TestPrepareRejectsForeignEmbed(t *testing.T) {
	_, err := PrepareUpload("My clip", "https://evil.com/embed/1", video.KindEmbed)
	assert.ErrorIs(t, err, admission.ErrDomainNotAllowed)
}

func TestPrepareDirectLinkKeepsURLAndDefaultThumbnail(t *testing.T) {
	p, err := Prepare(Request{
		Title:       "  Relaxing piano  ",
		Description: " evening set ",
		Kind:        video.KindDirectLink,
		URL:         "https://cdn.example.com/piano.mp4",
		Uploader:    Uploader{ID: "u1", Name: "ana"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Relaxing piano", p.Draft.Title)
	assert.Equal(t, "evening set", p.Draft.Description)
	assert.Equal(t, video.DirectLink{URL: "https://cdn.example.com/piano.mp4"}, p.Draft.Source)
	assert.Equal(t, platform.DefaultThumbnailURL, p.Draft.ThumbnailURL)
	assert.Equal(t, video.CategoryMusic, p.Draft.Category)
	assert.Equal(t, "u1", p.Draft.UploaderID)
	assert.Equal(t, platform.Unrecognized, p.Classification.Platform)
}

func TestPrepareDirectLinkIsNotRewritten(t *testing.T) {
	draft, err := PrepareUpload("clip", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", video.KindDirectLink)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", draft.Source.Locator())
}

func TestPrepareCustomThumbnailWins(t *testing.T) {
	p, err := Prepare(Request{
		Title:           "clip",
		Kind:            video.KindEmbed,
		URL:             "https://vimeo.com/76979871",
		CustomThumbnail: "https://images.example.org/mine.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.org/mine.jpg", p.Draft.ThumbnailURL)
	assert.Equal(t, "https://player.vimeo.com/video/76979871", p.Draft.Source.Locator())
}

func TestPrepareInvalidCustomThumbnailFallsBack(t *testing.T) {
	p, err := Prepare(Request{
		Title:           "clip",
		Kind:            video.KindEmbed,
		URL:             "https://vimeo.com/76979871",
		CustomThumbnail: "not a url",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://vumbnail.com/76979871.jpg", p.Draft.ThumbnailURL)
}

func TestPrepareAcceptsIframeSnippet(t *testing.T) {
	p, err := Prepare(Request{
		Title: "Odysee live stream",
		Kind:  video.KindEmbed,
		URL:   `<iframe src="https://odysee.com/$/embed/@chan:1/clip:2" allowfullscreen></iframe>`,
	})
	require.NoError(t, err)
	assert.Equal(t, video.CategoryLive, p.Draft.Category)
	assert.Equal(t, platform.Odysee, p.Classification.Platform)
	assert.True(t, strings.HasPrefix(p.Draft.ThumbnailURL, "https://thumbnails.odycdn.com/"))
}
