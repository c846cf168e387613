// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/vidshare/internal/metrics"
)

// LimitHook is told about every request refused by a limiter.
type LimitHook func(r *http.Request, limiter string)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Name         string // limiter label for metrics
	RequestLimit int
	WindowSize   time.Duration
	// KeyFunc defaults to the client IP.
	KeyFunc   func(r *http.Request) (string, error)
	OnLimited LimitHook
}

// RateLimit creates a sliding-window rate limiter. Refused requests get a
// JSON 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}
	retryAfter := strconv.Itoa(max(int(cfg.WindowSize.Seconds()), 1))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitRejection(cfg.Name)
			if cfg.OnLimited != nil {
				cfg.OnLimited(r, cfg.Name)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","detail":"too many requests, try again later"}`))
		}),
	)
}

// APIRateLimit limits every client IP to perMinute requests.
func APIRateLimit(perMinute int, hook LimitHook) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		Name:         "api",
		RequestLimit: perMinute,
		WindowSize:   time.Minute,
		OnLimited:    hook,
	})
}
