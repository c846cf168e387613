// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureBase(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf, Service: "test", Version: "v0"})
	t.Cleanup(func() { Reconfigure(Config{}) })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestWithComponentAddsServiceAndComponent(t *testing.T) {
	buf := captureBase(t)

	l := WithComponent("ingest")
	l.Info().Str(FieldEvent, "upload.admitted").Msg("ok")

	entry := lastLine(t, buf)
	assert.Equal(t, "test", entry["service"])
	assert.Equal(t, "v0", entry["version"])
	assert.Equal(t, "ingest", entry[FieldComponent])
	assert.Equal(t, "upload.admitted", entry[FieldEvent])
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	buf := captureBase(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "u-7")
	l := WithComponentFromContext(ctx, "feed")
	l.Info().Msg("hello")

	entry := lastLine(t, buf)
	assert.Equal(t, "req-1", entry[FieldRequestID])
	assert.Equal(t, "u-7", entry[FieldUserID])
	assert.Equal(t, "feed", entry[FieldComponent])
}

func TestWithContextWithoutFieldsReturnsSameLogger(t *testing.T) {
	captureBase(t)
	l := WithComponent("x")
	assert.Equal(t, l, WithContext(context.Background(), l))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestMiddlewareLogsRequest(t *testing.T) {
	buf := captureBase(t)

	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "rid-42"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	entry := lastLine(t, buf)
	assert.Equal(t, "request.handled", entry[FieldEvent])
	assert.Equal(t, "/api/v1/videos", entry[FieldPath])
	assert.EqualValues(t, http.StatusTeapot, entry[FieldStatus])
	assert.Equal(t, "rid-42", entry[FieldRequestID])
	assert.Contains(t, buf.String(), `"message":"inside"`)
}
