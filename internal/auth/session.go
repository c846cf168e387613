// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package auth models the signed-in identity as an explicit session value.
// Gated actions ask the session for permission; guests get an auth prompt and
// the action is dropped, never retried after sign-in.
package auth

import (
	"context"
	"errors"
	"fmt"
)

// User is a signed-in account.
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Action names a gated action as shown in the sign-in prompt.
type Action string

const (
	ActionLike    Action = "like this video"
	ActionSave    Action = "save videos"
	ActionFollow  Action = "follow creators"
	ActionComment Action = "comment on videos"
	ActionUpload  Action = "upload videos"
)

// ErrAuthRequired is returned by Gate for guests.
var ErrAuthRequired = errors.New("authentication required")

// GateError carries the action that was refused.
type GateError struct {
	Action Action
}

func (e *GateError) Error() string {
	return fmt.Sprintf("sign in to %s: %v", e.Action, ErrAuthRequired)
}

func (e *GateError) Unwrap() error { return ErrAuthRequired }

// PromptFunc shows the sign-in prompt for a refused action.
type PromptFunc func(Action)

// Session is the identity seen by one client. A nil User means guest.
type Session struct {
	User   *User
	prompt PromptFunc
}

// Guest returns a session with no user.
func Guest(prompt PromptFunc) *Session {
	return &Session{prompt: prompt}
}

// SignedIn returns a session for u.
func SignedIn(u User, prompt PromptFunc) *Session {
	return &Session{User: &u, prompt: prompt}
}

// IsGuest reports whether nobody is signed in.
func (s *Session) IsGuest() bool {
	return s == nil || s.User == nil
}

// UserID returns the signed-in user's ID or "".
func (s *Session) UserID() string {
	if s.IsGuest() {
		return ""
	}
	return s.User.ID
}

// Gate allows the action for signed-in users. Guests trigger the prompt and
// get a *GateError.
func (s *Session) Gate(action Action) error {
	if !s.IsGuest() {
		return nil
	}
	if s != nil && s.prompt != nil {
		s.prompt(action)
	}
	return &GateError{Action: action}
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session in ctx, or a guest session without prompt.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return Guest(nil)
}
