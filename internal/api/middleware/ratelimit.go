package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/wanderplan/wanderplan/internal/api/problem"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Default rate limit configurations.
var (
	// GenerateRateLimit applies to itinerary generation (10 req/min): it
	// fans out to the external generation service.
	GenerateRateLimit = RateLimitConfig{
		RequestLimit: 10,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to the engine's local endpoints (120 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 120,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware keyed by client IP.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			p := problem.TooManyRequests(GetRequestID(r.Context()), "rate limit exceeded")
			p.Instance = r.URL.Path
			p.Write(w)
		}),
	)
}
