// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ingest turns user upload input into a validated draft record. It is
// pure: persistence and event fan-out are the caller's job.
package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/vidshare/internal/admission"
	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/media/platform"
)

// Uploader identifies who submits a video.
type Uploader struct {
	ID     string
	Name   string
	Avatar string
}

// Request is the raw upload form.
type Request struct {
	Title       string
	Description string
	Kind        video.Kind
	// URL is a media or page URL; for embeds an <iframe> snippet is accepted too.
	URL             string
	CustomThumbnail string
	Uploader        Uploader
}

// Prepared is a draft plus the classification it was derived from.
type Prepared struct {
	Draft          video.Draft
	Classification platform.Result
}

// PrepareUpload validates and assembles a draft for an anonymous uploader.
func PrepareUpload(title, rawURL string, kind video.Kind) (video.Draft, error) {
	p, err := Prepare(Request{Title: title, URL: rawURL, Kind: kind})
	if err != nil {
		return video.Draft{}, err
	}
	return p.Draft, nil
}

// Prepare validates req and assembles a draft with zeroed counters. The first
// failing check is returned; title problems are reported before URL problems.
func Prepare(req Request) (Prepared, error) {
	title := norm.NFC.String(strings.TrimSpace(req.Title))
	if err := admission.ValidateTitle(title); err != nil {
		return Prepared{}, err
	}

	kind := req.Kind
	if kind == "" {
		kind = video.KindDirectLink
	}

	locator, err := ResolveLocator(req.URL, kind)
	if err != nil {
		return Prepared{}, err
	}

	class := platform.Classify(locator)

	thumbnail := platform.ResolveThumbnail(class)
	if custom := strings.TrimSpace(req.CustomThumbnail); custom != "" {
		if admission.ValidateThumbnailURL(custom) == nil {
			thumbnail = custom
		}
	}

	if kind == video.KindEmbed {
		if embed, ok := platform.EmbedURL(class); ok {
			locator = embed
		}
	}

	src, err := video.NewSource(kind, locator)
	if err != nil {
		return Prepared{}, err
	}

	return Prepared{
		Draft: video.Draft{
			Title:          title,
			Description:    strings.TrimSpace(req.Description),
			Source:         src,
			ThumbnailURL:   thumbnail,
			Category:       InferCategory(title),
			UploaderID:     req.Uploader.ID,
			UploaderName:   req.Uploader.Name,
			UploaderAvatar: req.Uploader.Avatar,
		},
		Classification: class,
	}, nil
}
