// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package platform

import (
	"strings"
)

// DefaultThumbnailURL is the placeholder used for unrecognised sources and for
// thumbnails that fail to load.
const DefaultThumbnailURL = "https://images.unsplash.com/photo-1611162616305-c69b3fa7fbe0?w=800&q=80"

const (
	youtubeThumbBase = "https://img.youtube.com/vi/"
	vimeoThumbBase   = "https://vumbnail.com/"
	odyseeThumbBase  = "https://thumbnails.odycdn.com/optimize/s:640:360/quality:85/plain/https://thumbnails.lbry.com/"
)

// youtubeQualities is ordered best first; clients walk it on load errors.
var youtubeQualities = []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

// ResolveThumbnail returns the preferred thumbnail for r. It never fails.
func ResolveThumbnail(r Result) string {
	return ThumbnailCandidates(r)[0]
}

// ThumbnailCandidates returns the fallback chain for r, best first. Every
// chain ends with DefaultThumbnailURL.
func ThumbnailCandidates(r Result) []string {
	if !r.Recognized() {
		return []string{DefaultThumbnailURL}
	}
	switch r.Platform {
	case YouTube:
		out := make([]string, 0, len(youtubeQualities)+1)
		for _, q := range youtubeQualities {
			out = append(out, youtubeThumbBase+r.ID+"/"+q+".jpg")
		}
		return append(out, DefaultThumbnailURL)
	case Vimeo:
		return []string{vimeoThumbBase + r.ID + ".jpg", DefaultThumbnailURL}
	case Odysee:
		return []string{odyseeThumbBase + escapeComponent(r.ID), DefaultThumbnailURL}
	}
	return []string{DefaultThumbnailURL}
}

// ThumbnailOrDefault trims url and substitutes the placeholder when nothing
// is left.
func ThumbnailOrDefault(url string) string {
	if url = strings.TrimSpace(url); url == "" {
		return DefaultThumbnailURL
	}
	return url
}

// escapeComponent percent-encodes everything except the unreserved set used
// by browsers for URI components (A-Z a-z 0-9 - _ . ! ~ * ' ( )).
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
