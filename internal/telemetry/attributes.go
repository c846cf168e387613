// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/ManuGH/vidshare/internal/domain/video"
	"github.com/ManuGH/vidshare/internal/media/platform"
)

// Span attribute keys.
const (
	VideoIDKey         = "video.id"
	VideoCategoryKey   = "video.category"
	VideoSourceKindKey = "video.source_kind"
	VideoPlatformKey   = "video.platform"

	UploadOutcomeKey = "upload.outcome"
	UploadReasonKey  = "upload.reason"

	FeedOriginKey   = "feed.origin"
	FeedCategoryKey = "feed.category"
	FeedCountKey    = "feed.count"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// VideoAttributes describes a stored record.
func VideoAttributes(rec video.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(VideoCategoryKey, string(rec.Category)),
		attribute.String(VideoSourceKindKey, string(rec.Kind())),
	}
	if rec.ID != "" {
		attrs = append(attrs, attribute.String(VideoIDKey, rec.ID))
	}
	return attrs
}

// ClassificationAttributes describes a classified upload URL.
func ClassificationAttributes(res platform.Result) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(VideoPlatformKey, string(res.Platform))}
}

// UploadAttributes describes an upload outcome. reason is empty on success.
func UploadAttributes(outcome, reason string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(UploadOutcomeKey, outcome)}
	if reason != "" {
		attrs = append(attrs, attribute.String(UploadReasonKey, reason))
	}
	return attrs
}

// FeedAttributes describes a served feed page.
func FeedAttributes(origin, category string, count int) []attribute.KeyValue {
	if category == "" {
		category = "all"
	}
	return []attribute.KeyValue{
		attribute.String(FeedOriginKey, origin),
		attribute.String(FeedCategoryKey, category),
		attribute.Int(FeedCountKey, count),
	}
}

// ErrorAttributes marks a span as failed with a coarse error type.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
