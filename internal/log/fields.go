// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldVideoID   = "video_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldAction    = "action"

	// Media fields
	FieldPlatform   = "platform"
	FieldSourceKind = "source_kind"
	FieldCategory   = "category"
	FieldReason     = "reason"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// HTTP fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
	FieldRemote   = "remote_addr"
)
