// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package platform recognises third-party video platforms from user-supplied
// URLs and derives thumbnails and embeddable player URLs for them. Nothing in
// this package performs network I/O.
package platform

import (
	"regexp"
	"strings"
)

// Platform names a recognised video host.
type Platform string

const (
	YouTube      Platform = "youtube"
	Vimeo        Platform = "vimeo"
	Odysee       Platform = "odysee"
	Unrecognized Platform = "unrecognized"
)

// Result is the outcome of Classify. ID is empty iff Platform is Unrecognized.
type Result struct {
	Platform Platform `json:"platform"`
	ID       string   `json:"id,omitempty"`
}

// Recognized reports whether a platform matched.
func (r Result) Recognized() bool {
	return r.Platform != Unrecognized && r.ID != ""
}

type matcher struct {
	platform Platform
	patterns []*regexp.Regexp
}

// matchers are tried in order and the first hit wins.
var matchers = []matcher{
	{
		platform: YouTube,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]{11})`),
			regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
			regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
			regexp.MustCompile(`youtube\.com/v/([A-Za-z0-9_-]{11})`),
			regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
		},
	},
	{
		platform: Vimeo,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`),
			regexp.MustCompile(`vimeo\.com/(\d+)`),
		},
	},
	{
		platform: Odysee,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`odysee\.com/(?:\$/embed/)?(@[^/?#]+/[^/?#]+)`),
		},
	},
}

// Classify identifies the platform and canonical id of raw. Unknown URLs are a
// normal outcome, not an error.
func Classify(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{Platform: Unrecognized}
	}
	for _, m := range matchers {
		for _, re := range m.patterns {
			if sub := re.FindStringSubmatch(raw); len(sub) == 2 && sub[1] != "" {
				return Result{Platform: m.platform, ID: sub[1]}
			}
		}
	}
	return Result{Platform: Unrecognized}
}

// EmbedURL returns the canonical embeddable player URL for a recognised
// result.
func EmbedURL(r Result) (string, bool) {
	if !r.Recognized() {
		return "", false
	}
	switch r.Platform {
	case YouTube:
		return "https://www.youtube.com/embed/" + r.ID, true
	case Vimeo:
		return "https://player.vimeo.com/video/" + r.ID, true
	case Odysee:
		return "https://odysee.com/$/embed/" + r.ID, true
	}
	return "", false
}
