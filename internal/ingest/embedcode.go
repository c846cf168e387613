// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ingest

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ManuGH/vidshare/internal/admission"
	"github.com/ManuGH/vidshare/internal/domain/video"
)

// ResolveLocator turns the submitted URL field into the locator to admit and
// validates it for kind. The raw input is length-checked before any markup is
// parsed; markup without an iframe src is malformed. The locator is returned
// alongside admission errors so callers can still classify it.
func ResolveLocator(raw string, kind video.Kind) (string, error) {
	if err := admission.ValidateURLInput(raw); err != nil {
		return "", err
	}
	locator := strings.TrimSpace(raw)
	if kind == video.KindEmbed && isMarkup(locator) {
		locator = ExtractEmbedSource(locator)
		if locator == "" {
			return "", &admission.Rejection{Field: "url", Reason: admission.ReasonMalformed}
		}
	}
	return locator, admission.Validate(locator, kind)
}

func isMarkup(s string) bool {
	return strings.HasPrefix(s, "<")
}

// ExtractEmbedSource returns the src of the first iframe in a pasted embed
// snippet. Input that is not markup is returned trimmed and unchanged.
func ExtractEmbedSource(input string) string {
	s := strings.TrimSpace(input)
	if !isMarkup(s) {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Iframe {
				continue
			}
			for _, a := range tok.Attr {
				if a.Key == "src" {
					return strings.TrimSpace(a.Val)
				}
			}
		}
	}
}
