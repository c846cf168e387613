// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okPing(context.Context) error   { return nil }
func downPing(context.Context) error { return errors.New("connection refused") }

func TestReady_NoCheckers(t *testing.T) {
	m := NewManager("v1")
	resp := m.Ready(context.Background(), true)
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
}

func TestReady_Aggregation(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(NewPingChecker("sqlite", okPing))
	m.RegisterChecker(NewOptionalPingChecker("redis", downPing))

	resp := m.Ready(context.Background(), true)
	assert.True(t, resp.Ready, "optional dependency only degrades")
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)

	m.RegisterChecker(NewPingChecker("store", downPing))
	resp = m.Ready(context.Background(), false)
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Nil(t, resp.Checks)
}

func TestServeHandlers(t *testing.T) {
	m := NewManager("v1.2.3")
	m.RegisterChecker(NewPingChecker("store", downPing))

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, StatusHealthy, health.Status)
	assert.Equal(t, "v1.2.3", health.Version)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, StatusUnhealthy, health.Status)

	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz?verbose=true", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var ready ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.False(t, ready.Ready)
	assert.Contains(t, ready.Checks, "store")
}

func TestDirChecker(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, StatusHealthy, NewDirChecker("data", dir).Check(context.Background()).Status)
	assert.Equal(t, StatusHealthy, NewDirChecker("data", "").Check(context.Background()).Status)

	missing := NewDirChecker("data", filepath.Join(dir, "missing")).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, missing.Status)
	assert.Contains(t, missing.Error, "does not exist")

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	assert.ErrorContains(t, CheckWritableDir(file), "not a directory")
}
