// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/metrics"
)

// handleEvents streams video-created events as server-sent events until
// the client goes away or the bus closes the subscription.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bus == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "unavailable", Detail: "realtime updates are disabled"})
		return
	}
	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "events")

	sub, err := s.deps.Bus.Subscribe(ctx)
	if err != nil {
		writeError(w, r, fmt.Errorf("subscribe: %w", err))
		return
	}
	defer func() { _ = sub.Close() }()

	rc := http.NewResponseController(w)
	// The server write timeout would cut long-lived streams.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Debug().Err(err).Msg("write deadline not cleared")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", sseRetryMillis); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		logger.Debug().Err(err).Msg("stream not flushable")
		return
	}

	metrics.AddRealtimeSubscribers(1)
	defer metrics.AddRealtimeSubscribers(-1)
	logger.Debug().Str(log.FieldEvent, "events.subscribed").Msg("event stream opened")

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error().Err(err).Msg("encode event")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", ev.Type, ev.Video.ID, data); err != nil {
				return
			}
			metrics.RecordRealtimeEvent("out")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
