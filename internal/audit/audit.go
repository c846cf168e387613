// SPDX-License-Identifier: MIT

// Package audit writes structured audit records for actions that change
// shared state or were refused. Each record answers who, what and when.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidshare/internal/log"
)

// EventType represents the type of audit event.
type EventType string

const (
	EventConfigReload      EventType = "config.reload"
	EventConfigReloadError EventType = "config.reload.error"

	EventUploadAdmitted EventType = "upload.admitted"
	EventUploadRejected EventType = "upload.rejected"

	EventAuthRequired EventType = "auth.required"
	EventRateLimit    EventType = "api.ratelimit"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	Actor      string // user id, or "guest" / "system"
	Action     string
	Resource   string
	Result     string // success, rejected, denied
	RemoteAddr string
	RequestID  string
	Details    map[string]string
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewLogger creates an audit logger on the "audit" component.
func NewLogger() *Logger {
	return NewLoggerWith(log.WithComponent("audit"))
}

// NewLoggerWith creates an audit logger writing to base.
func NewLoggerWith(base zerolog.Logger) *Logger {
	return &Logger{
		logger: base.With().Str("log_type", "audit").Logger(),
		now:    time.Now,
	}
}

// Log writes an audit event.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	ev := l.logger.Info().
		Time("timestamp", event.Timestamp).
		Str("event_type", string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)
	if event.RemoteAddr != "" {
		ev.Str("remote_addr", event.RemoteAddr)
	}
	if event.RequestID != "" {
		ev.Str(log.FieldRequestID, event.RequestID)
	}
	for k, v := range event.Details {
		ev.Str(k, v)
	}
	ev.Msg("audit event")
}

// LogFromContext fills the request id and actor from ctx when unset.
func (l *Logger) LogFromContext(ctx context.Context, event Event) {
	if event.RequestID == "" {
		event.RequestID = log.RequestIDFromContext(ctx)
	}
	if event.Actor == "" {
		event.Actor = log.UserIDFromContext(ctx)
	}
	if event.Actor == "" {
		event.Actor = "guest"
	}
	l.Log(event)
}

// ConfigReload records a configuration reload attempt.
func (l *Logger) ConfigReload(actor string, err error) {
	e := Event{
		Type:     EventConfigReload,
		Actor:    actor,
		Action:   "reloaded configuration",
		Resource: "config",
		Result:   "success",
	}
	if err != nil {
		e.Type = EventConfigReloadError
		e.Result = "failure"
		e.Details = map[string]string{"error": err.Error()}
	}
	l.Log(e)
}

// UploadAdmitted records a stored upload.
func (l *Logger) UploadAdmitted(ctx context.Context, videoID, kind, platform string) {
	l.LogFromContext(ctx, Event{
		Type:     EventUploadAdmitted,
		Action:   "uploaded video",
		Resource: videoID,
		Result:   "success",
		Details:  map[string]string{"kind": kind, "platform": platform},
	})
}

// UploadRejected records an upload refused by admission.
func (l *Logger) UploadRejected(ctx context.Context, field, reason string) {
	l.LogFromContext(ctx, Event{
		Type:     EventUploadRejected,
		Action:   "uploaded video",
		Resource: "videos",
		Result:   "rejected",
		Details:  map[string]string{"field": field, "reason": reason},
	})
}

// AuthRequired records a guest refused by a gated action.
func (l *Logger) AuthRequired(ctx context.Context, remoteAddr, action string) {
	l.LogFromContext(ctx, Event{
		Type:       EventAuthRequired,
		Action:     action,
		Resource:   "session",
		Result:     "denied",
		RemoteAddr: remoteAddr,
	})
}

// RateLimitExceeded records a request refused by a limiter.
func (l *Logger) RateLimitExceeded(ctx context.Context, remoteAddr, limiter string) {
	l.LogFromContext(ctx, Event{
		Type:       EventRateLimit,
		Action:     "exceeded rate limit",
		Resource:   limiter,
		Result:     "denied",
		RemoteAddr: remoteAddr,
	})
}
