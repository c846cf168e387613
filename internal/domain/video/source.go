// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package video

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies how a video is played back.
type Kind string

const (
	KindDirectLink Kind = "direct-link"
	KindEmbed      Kind = "embed"
)

// ErrUnknownKind is returned when a source kind cannot be parsed.
var ErrUnknownKind = errors.New("unknown source kind")

// ParseKind accepts the canonical kinds plus the legacy storage value "link".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct-link", "direct", "link":
		return KindDirectLink, nil
	case "embed":
		return KindEmbed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Source is the sealed sum type of playable sources. The only implementations
// are DirectLink and Embed; consumers switch on the concrete type.
type Source interface {
	Kind() Kind
	// Locator is the URL handed to the media element or frame.
	Locator() string
	isSource()
}

// DirectLink is a media file played by a native media element.
type DirectLink struct {
	URL string
}

// Embed is a third-party player page loaded into a frame.
type Embed struct {
	URL string
}

func (DirectLink) Kind() Kind        { return KindDirectLink }
func (s DirectLink) Locator() string { return s.URL }
func (DirectLink) isSource()         {}

func (Embed) Kind() Kind        { return KindEmbed }
func (s Embed) Locator() string { return s.URL }
func (Embed) isSource()         {}

// NewSource builds the variant for kind.
func NewSource(kind Kind, locator string) (Source, error) {
	switch kind {
	case KindDirectLink:
		return DirectLink{URL: locator}, nil
	case KindEmbed:
		return Embed{URL: locator}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
