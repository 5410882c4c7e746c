package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carmine/internal/config"
	"carmine/internal/session"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix

	// Identify names the client a request is counted against. Nil uses the
	// user and session already in the request context.
	Identify func(*http.Request) string
}

// RateLimitMiddleware implements a fixed-window rate limit in Redis, keyed by
// user id when authenticated, else session id, else remote host.
func RateLimitMiddleware(redisClient redis.Cmdable, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	identify := config.Identify
	if identify == nil {
		identify = contextClientID
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := identify(r)

			key := fmt.Sprintf("%s:%s", config.KeyPrefix, clientID)
			ctx := r.Context()

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				// Fail open: a Redis outage should not take the API down
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				if err := redisClient.Expire(ctx, key, config.Window).Err(); err != nil {
					logger.Warn("Failed to set rate limit window", zap.Error(err), zap.String("key", key))
				}
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))

			if count > int64(config.RequestsPerWindow) {
				ttl, err := redisClient.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = config.Window
				}

				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))

				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			remaining := config.RequestsPerWindow - int(count)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}

func contextClientID(r *http.Request) string {
	if userID, ok := GetUserID(r.Context()); ok {
		return "user:" + userID
	}
	if sessionID, ok := GetSessionID(r.Context()); ok {
		return "session:" + sessionID
	}
	return remoteHost(r)
}

// ClientIdentifier resolves the client before any route middleware has run.
// Only a verified bearer token or a session that exists in the store is
// trusted; anything else is counted against the remote host.
func ClientIdentifier(jwtSecret string, manager *session.Manager, cfg config.SessionConfig) func(*http.Request) string {
	cookieName := sessionCookieName(cfg)

	return func(r *http.Request) string {
		if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			if userID, _, err := parseToken(token, jwtSecret); err == nil {
				return "user:" + userID
			}
		}

		id := r.Header.Get(SessionHeader)
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			id = c.Value
		}
		if id != "" {
			if _, err := manager.Load(r.Context(), id); err == nil {
				return "session:" + id
			}
		}

		return remoteHost(r)
	}
}

// remoteHost drops the port so that every connection from a host shares
// one budget.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
