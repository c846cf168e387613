// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"sync"

	xglog "github.com/ManuGH/vidshare/internal/log"
)

// Store is the single holder of the current session for a client. It is
// created at startup and passed explicitly to whoever needs it.
type Store struct {
	mu        sync.RWMutex
	current   *Session
	prompt    PromptFunc
	listeners map[int]func(*Session)
	nextID    int
}

// NewStore starts as guest. prompt is attached to every session it hands out.
func NewStore(prompt PromptFunc) *Store {
	return &Store{
		current:   Guest(prompt),
		prompt:    prompt,
		listeners: make(map[int]func(*Session)),
	}
}

// Current returns the active session.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SignIn replaces the session with one for u.
func (s *Store) SignIn(u User) {
	s.set(SignedIn(u, s.prompt))
	logger := xglog.WithComponent("auth")
	logger.Info().Str(xglog.FieldEvent, "auth.signed_in").Str(xglog.FieldUserID, u.ID).Msg("session started")
}

// SignOut tears the session down to guest.
func (s *Store) SignOut() {
	s.set(Guest(s.prompt))
	logger := xglog.WithComponent("auth")
	logger.Info().Str(xglog.FieldEvent, "auth.signed_out").Msg("session ended")
}

func (s *Store) set(next *Session) {
	s.mu.Lock()
	s.current = next
	listeners := make([]func(*Session), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l(next)
	}
}

// Subscribe registers fn for session changes and returns its cancel func.
func (s *Store) Subscribe(fn func(*Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
