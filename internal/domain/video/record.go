// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package video

import (
	"encoding/json"
	"strings"
	"time"
)

// Category is the coarse browse bucket of a video.
type Category string

const (
	CategoryMusic  Category = "music"
	CategorySport  Category = "sport"
	CategoryLive   Category = "live"
	CategoryMovies Category = "movies"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMusic, CategorySport, CategoryLive, CategoryMovies}

// ParseCategory reports whether s names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryMusic, CategorySport, CategoryLive, CategoryMovies:
		return c, true
	}
	return "", false
}

// Draft is a record that has been admitted but not yet persisted.
type Draft struct {
	Title          string
	Description    string
	Source         Source
	ThumbnailURL   string
	Category       Category
	Views          int64
	Likes          int64
	UploaderID     string
	UploaderName   string
	UploaderAvatar string
}

// Record is a persisted video. ID and CreatedAt are assigned by storage and
// never change; Views and Likes only move through storage operations.
type Record struct {
	ID             string
	Title          string
	Description    string
	Source         Source
	ThumbnailURL   string
	Category       Category
	Views          int64
	Likes          int64
	UploaderID     string
	UploaderName   string
	UploaderAvatar string
	CreatedAt      time.Time
}

// Record materialises a draft with the identity assigned by storage.
func (d Draft) Record(id string, createdAt time.Time) Record {
	return Record{
		ID:             id,
		Title:          d.Title,
		Description:    d.Description,
		Source:         d.Source,
		ThumbnailURL:   d.ThumbnailURL,
		Category:       d.Category,
		Views:          d.Views,
		Likes:          d.Likes,
		UploaderID:     d.UploaderID,
		UploaderName:   d.UploaderName,
		UploaderAvatar: d.UploaderAvatar,
		CreatedAt:      createdAt,
	}
}

// Kind returns the source kind, defaulting to direct-link for a nil source.
func (r Record) Kind() Kind {
	if r.Source == nil {
		return KindDirectLink
	}
	return r.Source.Kind()
}

// MarshalJSON encodes the record in its wire shape.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToRaw(r))
}

// UnmarshalJSON decodes the wire shape through FromRaw.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw Raw
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = FromRaw(raw)
	return nil
}

// Comment is a text reply attached to a video.
type Comment struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	UserAvatar string    `json:"user_avatar,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
