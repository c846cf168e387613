// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/vidshare/internal/admission"
	"github.com/ManuGH/vidshare/internal/auth"
	"github.com/ManuGH/vidshare/internal/bookmarks"
	"github.com/ManuGH/vidshare/internal/log"
	"github.com/ManuGH/vidshare/internal/store"
)

var (
	errBadRequest  = errors.New("bad request")
	errRateLimited = errors.New("upload rate limit exceeded")
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
	Action string `json:"action,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and error body. Only unexpected
// errors are logged above debug.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rej  *admission.Rejection
		gate *auth.GateError
	)
	switch {
	case errors.As(err, &rej):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  string(rej.Reason),
			Detail: err.Error(),
			Field:  rej.Field,
		})
	case errors.As(err, &gate):
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Error:  "auth_required",
			Detail: err.Error(),
			Action: string(gate.Action),
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Detail: "video not found"})
	case errors.Is(err, errBadRequest),
		errors.Is(err, bookmarks.ErrNoVideo),
		errors.Is(err, store.ErrInvalidDraft):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Detail: err.Error()})
	case errors.Is(err, errRateLimited):
		w.Header().Set("Retry-After", "10")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Detail: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: "timeout", Detail: "storage did not answer in time"})
	default:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).
			Str(log.FieldEvent, "api.internal_error").
			Str(log.FieldPath, r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Detail: "internal server error"})
	}
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
