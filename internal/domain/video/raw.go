// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package video

import (
	"strings"
	"time"

	"github.com/ManuGH/vidshare/internal/media/platform"
)

// Raw is the loosely-typed row shape seen at the storage and realtime
// boundaries. Older rows used source_type "link" and split the locator across
// url, video_url and embed_code.
type Raw struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	SourceType   string    `json:"source_type"`
	URL          string    `json:"url,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
	EmbedCode    string    `json:"embed_code,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Category     string    `json:"category"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	UserAvatar   string    `json:"user_avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FromRaw maps a raw row into a Record, filling every default once.
func FromRaw(raw Raw) Record {
	kind, err := ParseKind(raw.SourceType)
	if err != nil {
		kind = KindDirectLink
	}

	locator := firstNonEmpty(raw.URL, raw.VideoURL)
	if kind == KindEmbed {
		locator = firstNonEmpty(raw.URL, raw.EmbedCode, raw.VideoURL)
	}
	src, _ := NewSource(kind, strings.TrimSpace(locator))

	category, ok := ParseCategory(raw.Category)
	if !ok {
		category = CategoryMusic
	}

	thumb := platform.ThumbnailOrDefault(raw.ThumbnailURL)

	return Record{
		ID:             raw.ID,
		Title:          raw.Title,
		Description:    raw.Description,
		Source:         src,
		ThumbnailURL:   thumb,
		Category:       category,
		Views:          max(raw.Views, 0),
		Likes:          max(raw.Likes, 0),
		UploaderID:     raw.UserID,
		UploaderName:   firstNonEmpty(raw.Username, "Anonymous"),
		UploaderAvatar: raw.UserAvatar,
		CreatedAt:      raw.CreatedAt,
	}
}

// ToRaw is the inverse of FromRaw for records that are already complete.
func ToRaw(r Record) Raw {
	raw := Raw{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		SourceType:   string(r.Kind()),
		ThumbnailURL: r.ThumbnailURL,
		Category:     string(r.Category),
		Views:        r.Views,
		Likes:        r.Likes,
		UserID:       r.UploaderID,
		Username:     r.UploaderName,
		UserAvatar:   r.UploaderAvatar,
		CreatedAt:    r.CreatedAt,
	}
	if r.Source != nil {
		raw.URL = r.Source.Locator()
	}
	return raw
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
