// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package admission decides whether user-submitted URLs and text are allowed
// into the catalogue. Checks run in a fixed order and stop at the first
// failure.
package admission

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

const (
	MaxURLLength     = 2000
	MaxTitleLength   = 200
	MaxCommentLength = 1000
)

// Reason is the machine-readable cause of a rejection.
type Reason string

const (
	ReasonEmpty            Reason = "EMPTY"
	ReasonTooLong          Reason = "TOO_LONG"
	ReasonMalformed        Reason = "MALFORMED"
	ReasonBadScheme        Reason = "BAD_SCHEME"
	ReasonDomainNotAllowed Reason = "DOMAIN_NOT_ALLOWED"
)

// Sentinels matched by errors.Is against a *Rejection.
var (
	ErrEmpty            = errors.New("value is empty")
	ErrTooLong          = errors.New("value is too long")
	ErrMalformed        = errors.New("malformed URL")
	ErrBadScheme        = errors.New("URL scheme must be http or https")
	ErrDomainNotAllowed = errors.New("domain is not an allowed embed host")
)

var reasonErrors = map[Reason]error{
	ReasonEmpty:            ErrEmpty,
	ReasonTooLong:          ErrTooLong,
	ReasonMalformed:        ErrMalformed,
	ReasonBadScheme:        ErrBadScheme,
	ReasonDomainNotAllowed: ErrDomainNotAllowed,
}

// Rejection is the validation failure returned by every check in this package.
type Rejection struct {
	Field  string
	Reason Reason
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s: %v", r.Field, r.Reason, reasonErrors[r.Reason])
}

// Unwrap exposes the per-reason sentinel.
func (r *Rejection) Unwrap() error {
	return reasonErrors[r.Reason]
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

func reject(field string, reason Reason) error {
	return &Rejection{Field: field, Reason: reason}
}

// EmbedDomains are the hosts (and their subdomains) accepted for embeds.
var EmbedDomains = []string{"youtube.com", "youtu.be", "vimeo.com", "odysee.com"}

// Validate checks raw against the admission policy for kind. Direct links may
// point at any http(s) host; embeds must come from EmbedDomains.
func Validate(raw string, kind video.Kind) error {
	u, err := parseHTTPURL("url", raw)
	if err != nil {
		return err
	}
	if kind == video.KindEmbed && !embedHostAllowed(u.Hostname()) {
		return reject("url", ReasonDomainNotAllowed)
	}
	return nil
}

// ValidateThumbnailURL is the format-only check applied to custom thumbnails.
func ValidateThumbnailURL(raw string) error {
	_, err := parseHTTPURL("thumbnail", raw)
	return err
}

// ValidateTitle rejects blank titles and titles over MaxTitleLength characters.
func ValidateTitle(title string) error {
	return checkText("title", title, MaxTitleLength)
}

// ValidateComment rejects blank comments and comments over MaxCommentLength characters.
func ValidateComment(text string) error {
	return checkText("comment", text, MaxCommentLength)
}

func checkText(field, s string, limit int) error {
	if strings.TrimSpace(s) == "" {
		return reject(field, ReasonEmpty)
	}
	if utf8.RuneCountInString(s) > limit {
		return reject(field, ReasonTooLong)
	}
	return nil
}

// ValidateURLInput applies the EMPTY and TOO_LONG rules to submitted URL
// input before anything parses it.
func ValidateURLInput(raw string) error {
	return checkURLInput("url", raw)
}

func checkURLInput(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return reject(field, ReasonEmpty)
	}
	if utf8.RuneCountInString(raw) > MaxURLLength {
		return reject(field, ReasonTooLong)
	}
	return nil
}

func parseHTTPURL(field, raw string) (*url.URL, error) {
	if err := checkURLInput(field, raw); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil, reject(field, ReasonMalformed)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, reject(field, ReasonBadScheme)
	}
	if u.Hostname() == "" {
		return nil, reject(field, ReasonMalformed)
	}
	return u, nil
}

func embedHostAllowed(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, d := range EmbedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
