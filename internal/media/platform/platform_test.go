// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Result{YouTube, "dQw4w9WgXcQ"}},
		{"watch with params", "https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", Result{YouTube, "dQw4w9WgXcQ"}},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", Result{YouTube, "dQw4w9WgXcQ"}},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1", Result{YouTube, "dQw4w9WgXcQ"}},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ", Result{YouTube, "dQw4w9WgXcQ"}},
		{"shorts", "https://youtube.com/shorts/abcdefghijk", Result{YouTube, "abcdefghijk"}},
		{"vimeo", "https://vimeo.com/76979871", Result{Vimeo, "76979871"}},
		{"vimeo player", "https://player.vimeo.com/video/76979871?h=1", Result{Vimeo, "76979871"}},
		{"odysee", "https://odysee.com/@veritasium:f/why-no-right-turns:5?r=x", Result{Odysee, "@veritasium:f/why-no-right-turns:5"}},
		{"odysee embed", "https://odysee.com/$/embed/@chan:1/clip:2", Result{Odysee, "@chan:1/clip:2"}},
		{"direct file", "https://cdn.example.com/clip.mp4", Result{Platform: Unrecognized}},
		{"short youtube id", "https://youtu.be/abc", Result{Platform: Unrecognized}},
		{"empty", "  ", Result{Platform: Unrecognized}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Platform != Unrecognized, got.ID != "")
		})
	}
}

func TestClassifyYouTubeIDIsElevenChars(t *testing.T) {
	for _, in := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQXYZ",
		"https://youtube.com/shorts/a_b-c_d-e_f",
	} {
		r := Classify(in)
		require.Equal(t, YouTube, r.Platform, in)
		assert.Len(t, r.ID, 11, in)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	in := "https://youtu.be/dQw4w9WgXcQ"
	assert.Equal(t, Classify(in), Classify(in))
}

func TestResolveThumbnail(t *testing.T) {
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		ResolveThumbnail(Result{YouTube, "dQw4w9WgXcQ"}))
	assert.Equal(t, "https://vumbnail.com/76979871.jpg",
		ResolveThumbnail(Result{Vimeo, "76979871"}))
	assert.Equal(t,
		"https://thumbnails.odycdn.com/optimize/s:640:360/quality:85/plain/https://thumbnails.lbry.com/%40veritasium%3Af%2Fwhy-no-right-turns%3A5",
		ResolveThumbnail(Result{Odysee, "@veritasium:f/why-no-right-turns:5"}))
	assert.Equal(t, DefaultThumbnailURL, ResolveThumbnail(Result{Platform: Unrecognized}))
	assert.Equal(t, DefaultThumbnailURL, ResolveThumbnail(Result{}))
}

func TestResolveThumbnailIsIdempotent(t *testing.T) {
	r := Classify("https://vimeo.com/1")
	assert.Equal(t, ResolveThumbnail(r), ResolveThumbnail(r))
}

func TestThumbnailCandidatesEndWithDefault(t *testing.T) {
	yt := ThumbnailCandidates(Result{YouTube, "dQw4w9WgXcQ"})
	require.Len(t, yt, 5)
	assert.Contains(t, yt[1], "sddefault")
	assert.Contains(t, yt[3], "mqdefault")
	for _, r := range []Result{{YouTube, "dQw4w9WgXcQ"}, {Vimeo, "1"}, {Odysee, "@a/b"}, {Platform: Unrecognized}} {
		c := ThumbnailCandidates(r)
		assert.Equal(t, DefaultThumbnailURL, c[len(c)-1])
	}
}

func TestEmbedURL(t *testing.T) {
	u, ok := EmbedURL(Classify("https://youtu.be/dQw4w9WgXcQ"))
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", u)

	u, ok = EmbedURL(Classify("https://vimeo.com/76979871"))
	require.True(t, ok)
	assert.Equal(t, "https://player.vimeo.com/video/76979871", u)

	u, ok = EmbedURL(Classify("https://odysee.com/@chan:1/clip:2"))
	require.True(t, ok)
	assert.Equal(t, "https://odysee.com/$/embed/@chan:1/clip:2", u)

	_, ok = EmbedURL(Classify("https://example.com/x"))
	assert.False(t, ok)
}

func TestThumbnailOrDefault(t *testing.T) {
	assert.Equal(t, DefaultThumbnailURL, ThumbnailOrDefault(""))
	assert.Equal(t, "https://x/y.jpg", ThumbnailOrDefault("https://x/y.jpg"))
	assert.Equal(t, "https://x/y.jpg", ThumbnailOrDefault("  https://x/y.jpg "))
	assert.Equal(t, DefaultThumbnailURL, ThumbnailOrDefault(" \t"))
}

func TestEscapeComponentMatchesBrowserRules(t *testing.T) {
	assert.Equal(t, "a%20b%2Fc%3F!~*'()", escapeComponent("a b/c?!~*'()"))
}
