// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package video

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidshare/internal/media/platform"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"link":        KindDirectLink,
		"direct-link": KindDirectLink,
		" Embed ":     KindEmbed,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("torrent")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFromRawFillsDefaults(t *testing.T) {
	rec := FromRaw(Raw{ID: "v1", Title: "t", SourceType: "link", VideoURL: "https://cdn.example/a.mp4", Views: -3})

	assert.Equal(t, DirectLink{URL: "https://cdn.example/a.mp4"}, rec.Source)
	assert.Equal(t, CategoryMusic, rec.Category)
	assert.Equal(t, platform.DefaultThumbnailURL, rec.ThumbnailURL)
	assert.Zero(t, rec.Views)
	assert.Zero(t, rec.Likes)
	assert.Empty(t, rec.Description)
	assert.Equal(t, "Anonymous", rec.UploaderName)

	rec = FromRaw(Raw{ID: "v2", ThumbnailURL: "   "})
	assert.Equal(t, platform.DefaultThumbnailURL, rec.ThumbnailURL)
	rec = FromRaw(Raw{ID: "v3", ThumbnailURL: " https://cdn.example/t.jpg "})
	assert.Equal(t, "https://cdn.example/t.jpg", rec.ThumbnailURL)
}

func TestFromRawEmbedPrefersURLThenEmbedCode(t *testing.T) {
	rec := FromRaw(Raw{SourceType: "embed", EmbedCode: "https://player.vimeo.com/video/42", Category: "LIVE"})
	assert.Equal(t, Embed{URL: "https://player.vimeo.com/video/42"}, rec.Source)
	assert.Equal(t, CategoryLive, rec.Category)
	assert.Equal(t, KindEmbed, rec.Kind())
}

func TestFromRawUnknownKindFallsBackToDirectLink(t *testing.T) {
	rec := FromRaw(Raw{SourceType: "hologram", URL: "https://x.example/v.webm"})
	assert.Equal(t, KindDirectLink, rec.Kind())
}

func TestRecordJSONRoundTripsThroughMapper(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := Draft{
		Title:        "Championship Final Goal Highlights",
		Source:       Embed{URL: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		ThumbnailURL: "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		Category:     CategorySport,
		UploaderID:   "u1",
		UploaderName: "ana",
	}.Record("v1", created)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"source_type":"embed"`)

	var back Record
	require.NoError(t, json.Unmarshal(b, &back))
	if diff := cmp.Diff(rec, back); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestNilSourceKindDefaults(t *testing.T) {
	assert.Equal(t, KindDirectLink, Record{}.Kind())
	_, err := NewSource("hologram", "x")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
