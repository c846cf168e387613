// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestGateFiresPrompt(t *testing.T) {
	var prompted []Action
	s := Guest(func(a Action) { prompted = append(prompted, a) })

	require.True(t, s.IsGuest())
	err := s.Gate(ActionLike)
	require.ErrorIs(t, err, ErrAuthRequired)

	var gate *GateError
	require.ErrorAs(t, err, &gate)
	assert.Equal(t, ActionLike, gate.Action)
	assert.Equal(t, []Action{ActionLike}, prompted)
	assert.Equal(t, "sign in to like this video: authentication required", err.Error())
}

func TestSignedInGatePasses(t *testing.T) {
	called := false
	s := SignedIn(User{ID: "u1", Name: "ana"}, func(Action) { called = true })
	assert.False(t, s.IsGuest())
	assert.NoError(t, s.Gate(ActionUpload))
	assert.False(t, called)
	assert.Equal(t, "u1", s.UserID())
}

func TestNilSessionIsGuest(t *testing.T) {
	var s *Session
	assert.True(t, s.IsGuest())
	assert.ErrorIs(t, s.Gate(ActionSave), ErrAuthRequired)
	assert.Empty(t, s.UserID())
}

func TestFromContextDefaultsToGuest(t *testing.T) {
	assert.True(t, FromContext(context.Background()).IsGuest())
	ctx := WithSession(context.Background(), SignedIn(User{ID: "u1"}, nil))
	assert.Equal(t, "u1", FromContext(ctx).UserID())
}

func TestStoreLifecycle(t *testing.T) {
	var prompts int
	st := NewStore(func(Action) { prompts++ })
	var seen []bool
	cancel := st.Subscribe(func(s *Session) { seen = append(seen, s.IsGuest()) })

	require.True(t, st.Current().IsGuest())
	st.SignIn(User{ID: "u1", Name: "ana"})
	assert.Equal(t, "u1", st.Current().UserID())

	st.SignOut()
	assert.True(t, st.Current().IsGuest())
	assert.Error(t, st.Current().Gate(ActionComment))
	assert.Equal(t, 1, prompts)

	cancel()
	st.SignIn(User{ID: "u2"})
	assert.Equal(t, []bool{false, true}, seen)
}

func TestDirectoryResolve(t *testing.T) {
	dir := NewDirectory(map[string]User{
		"tok-a": {ID: "a", Name: "Ana"},
		"tok-b": {ID: "b", Name: "Ben"},
		"":      {ID: "nobody"},
		"tok-c": {},
	})
	u, ok := dir.Resolve("tok-b")
	require.True(t, ok)
	assert.Equal(t, "Ben", u.Name)

	_, ok = dir.Resolve("tok-c")
	assert.False(t, ok)
	_, ok = dir.Resolve("")
	assert.False(t, ok)
	_, ok = (*Directory)(nil).Resolve("tok-a")
	assert.False(t, ok)
	assert.Equal(t, 2, dir.Len())

	dir.Replace(map[string]User{"tok-z": {ID: "z", Name: "Zoe"}})
	_, ok = dir.Resolve("tok-a")
	assert.False(t, ok, "replaced tokens stop resolving")
	u, ok = dir.Resolve("tok-z")
	require.True(t, ok)
	assert.Equal(t, "z", u.ID)
}

func TestExtractTokenOrder(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-API-Token", "legacy")
	assert.Equal(t, "legacy", ExtractToken(r))

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie"})
	assert.Equal(t, "cookie", ExtractToken(r))

	r.Header.Set("Authorization", "Bearer  bearer ")
	assert.Equal(t, "bearer", ExtractToken(r))
}

func TestMiddlewareAttachesSession(t *testing.T) {
	dir := NewDirectory(map[string]User{"secret": {ID: "u1", Name: "ana"}})
	var got *Session
	h := Middleware(dir)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID())

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer wrong")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, got.IsGuest())
}
