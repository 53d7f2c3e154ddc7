package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles abuse-prone endpoints with a fixed window counter
// in Redis. A nil client disables limiting entirely, so deployments without
// Redis keep working.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *slog.Logger
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window, logger: logger}
}

// Limit guards a single route, keyed per client IP.
func (rl *RateLimiter) Limit(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.client == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("ratelimit:%s:%s", route, clientIP(r))
			ctx := r.Context()

			count, err := rl.client.Incr(ctx, key).Result()
			if err != nil {
				// Redis being down must not lock users out.
				rl.logger.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rl.client.Expire(ctx, key, rl.window)
			}

			if count > int64(rl.limit) {
				rl.logger.Warn("rate limit exceeded", "route", route, "ip", clientIP(r))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success": false, "error": "too many requests, slow down"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
