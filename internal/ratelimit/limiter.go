// SPDX-License-Identifier: MIT

// Package ratelimit throttles uploads per uploader.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManuGH/vidshare/internal/metrics"
)

// Config holds upload rate limits.
type Config struct {
	// GlobalRate bounds uploads across all users, per second.
	GlobalRate  rate.Limit
	GlobalBurst int

	// PerUserRate bounds one uploader, per second.
	PerUserRate  rate.Limit
	PerUserBurst int

	// IdleTTL drops a user's limiter after this long without requests.
	IdleTTL time.Duration
}

// DefaultConfig allows a short burst of uploads and then one every 10s per
// user.
func DefaultConfig() Config {
	return Config{
		GlobalRate:   5,
		GlobalBurst:  20,
		PerUserRate:  rate.Every(10 * time.Second),
		PerUserBurst: 3,
		IdleTTL:      10 * time.Minute,
	}
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter applies a global and a per-user token bucket.
type Limiter struct {
	config Config
	global *rate.Limiter
	now    func() time.Time

	mu          sync.Mutex
	users       map[string]*userLimiter
	lastCleanup time.Time
}

// New creates a limiter. Zero fields take the defaults.
func New(config Config) *Limiter {
	def := DefaultConfig()
	if config.GlobalRate <= 0 {
		config.GlobalRate, config.GlobalBurst = def.GlobalRate, def.GlobalBurst
	}
	if config.PerUserRate <= 0 {
		config.PerUserRate, config.PerUserBurst = def.PerUserRate, def.PerUserBurst
	}
	config.GlobalBurst = max(config.GlobalBurst, 1)
	config.PerUserBurst = max(config.PerUserBurst, 1)
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}

	return &Limiter{
		config:      config,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		now:         time.Now,
		users:       make(map[string]*userLimiter),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether userID may upload now. The per-user bucket is
// checked first so one noisy user cannot drain the global bucket.
func (l *Limiter) Allow(userID string) bool {
	now := l.now()

	l.mu.Lock()
	u := l.userLocked(userID, now)
	l.cleanupLocked(now)
	l.mu.Unlock()

	if !u.AllowN(now, 1) {
		metrics.RecordRateLimitRejection("upload_per_user")
		return false
	}
	if !l.global.AllowN(now, 1) {
		metrics.RecordRateLimitRejection("upload_global")
		return false
	}
	return true
}

func (l *Limiter) userLocked(userID string, now time.Time) *rate.Limiter {
	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(l.config.PerUserRate, l.config.PerUserBurst)}
		l.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter
}

// cleanupLocked drops limiters idle for longer than IdleTTL.
func (l *Limiter) cleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < l.config.IdleTTL {
		return
	}
	for id, u := range l.users {
		if now.Sub(u.lastSeen) >= l.config.IdleTTL {
			delete(l.users, id)
		}
	}
	l.lastCleanup = now
}

// Tracked returns the number of per-user limiters held.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}
