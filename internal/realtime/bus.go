// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package realtime announces newly created videos to live subscribers.
package realtime

import (
	"context"
	"errors"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

// EventVideoCreated is the only event type carried on the bus.
const EventVideoCreated = "video.created"

// subscriberBuffer bounds how far a subscriber may fall behind before
// events are dropped for it.
const subscriberBuffer = 64

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("realtime: bus closed")

// VideoCreated announces a record that storage has just persisted.
type VideoCreated struct {
	Type  string       `json:"type"`
	Video video.Record `json:"video"`
}

// NewVideoCreated wraps rec in an event.
func NewVideoCreated(rec video.Record) VideoCreated {
	return VideoCreated{Type: EventVideoCreated, Video: rec}
}

// Subscription delivers events until Close is called. C is closed after
// Close returns or when the backend goes away.
type Subscription interface {
	C() <-chan VideoCreated
	Close() error
}

// Bus fans out video-created events. Publish never blocks on a slow
// subscriber; a full subscriber buffer drops the event for that subscriber.
type Bus interface {
	Publish(ctx context.Context, ev VideoCreated) error
	Subscribe(ctx context.Context) (Subscription, error)
}
