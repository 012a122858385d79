package middleware

import (
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/boombff/internal/config"
	"github.com/vyrodovalexey/boombff/internal/observability"
)

// RateLimit returns a middleware that rejects requests with 429 once the
// limiter's bucket is empty.
func RateLimit(limiter *rate.Limiter, logger observability.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("rate limit exceeded",
					observability.String("path", r.URL.Path),
					observability.String("remote_addr", r.RemoteAddr),
					observability.String("request_id", observability.RequestIDFromContext(r.Context())),
				)

				w.Header().Set(HeaderContentType, ContentTypeJSON)
				w.Header().Set(HeaderRetryAfter, "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitFromConfig builds the rate limit middleware, or a pass-through
// when limiting is disabled.
func RateLimitFromConfig(cfg config.RateLimitConfig, logger observability.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return RateLimit(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst), logger)
}
