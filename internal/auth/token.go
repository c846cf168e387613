// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/ManuGH/vidshare/internal/log"
)

// SessionCookie is the cookie consulted when no bearer token is sent.
const SessionCookie = "vidshare_session"

// ExtractToken retrieves the API token from the request.
// 1. Authorization: Bearer <token>
// 2. Cookie: vidshare_session
// 3. Header: X-API-Token
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("X-API-Token")
}

// AuthorizeToken returns true if got matches expected using constant-time comparison.
// Empty tokens are always treated as unauthorized.
func AuthorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// Directory resolves API tokens to users. Replace swaps the whole table.
type Directory struct {
	mu      sync.RWMutex
	entries []tokenEntry
}

type tokenEntry struct {
	token string
	user  User
}

// NewDirectory builds a directory from token -> user pairs.
func NewDirectory(tokens map[string]User) *Directory {
	return &Directory{entries: buildEntries(tokens)}
}

// Replace installs a new token table, e.g. after a config reload.
func (d *Directory) Replace(tokens map[string]User) {
	entries := buildEntries(tokens)
	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()
}

// Len reports how many tokens resolve.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func buildEntries(tokens map[string]User) []tokenEntry {
	entries := make([]tokenEntry, 0, len(tokens))
	for tok, u := range tokens {
		if strings.TrimSpace(tok) == "" || u.ID == "" {
			continue
		}
		entries = append(entries, tokenEntry{token: tok, user: u})
	}
	return entries
}

// Resolve compares against every entry so timing does not reveal which one matched.
func (d *Directory) Resolve(token string) (User, bool) {
	var (
		found User
		ok    bool
	)
	if d == nil {
		return found, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.entries {
		if AuthorizeToken(token, e.token) {
			found, ok = e.user, true
		}
	}
	return found, ok
}

// Middleware attaches a session to each request: signed in when the token
// resolves, guest otherwise. Unknown tokens are not rejected here; gated
// handlers refuse guests themselves.
func Middleware(dir *Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess := Guest(nil)
			if tok := ExtractToken(r); tok != "" {
				if u, ok := dir.Resolve(tok); ok {
					sess = SignedIn(u, nil)
					ctx = log.ContextWithUserID(ctx, u.ID)
				}
			}
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}
