package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mavenestudio/services/i18n"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc is a function that returns a unique key for rate limiting (defaults to IP)
	KeyFunc func(c echo.Context) string
	// Message is the error message returned when rate limit is exceeded
	Message string
	// MessageKey, when set, is translated into the request language instead of Message
	MessageKey string
	// KeyPrefix namespaces counters in Redis
	KeyPrefix string
	// Redis shares counters across instances; nil keeps them in memory
	Redis *redis.Client
}

// rateLimitEntry tracks request count and window expiration
type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// RateLimiter is a per-endpoint rate limiter
type RateLimiter struct {
	config RateLimitConfig
	store  map[string]*rateLimitEntry
	mu     sync.Mutex
	stop   chan struct{}
	once   sync.Once
}

// Atomic increment that starts the window on the first hit.
// Returns {count, ttl_seconds}.
const rateLimitScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rl:"
	}

	rl := &RateLimiter{
		config: config,
		store:  make(map[string]*rateLimitEntry),
		stop:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// NewLeadRateLimiter guards the contact wizard and the lead API: 60 requests
// per minute per IP, shared through Redis when a client is given.
func NewLeadRateLimiter(client *redis.Client) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Requests:   60,
		Window:     time.Minute,
		MessageKey: "form.errors.rateLimited",
		KeyPrefix:  "rl:lead:",
		Redis:      client,
	})
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rl.config.KeyFunc(c)
			count, resetAt := rl.hit(c.Request().Context(), key)

			if count <= rl.config.Requests {
				return next(c)
			}

			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			log.Warn().Str("key", key).Str("path", c.Path()).Msg("Rate limit exceeded")

			// The error handler turns this into a toast for htmx requests
			return echo.NewHTTPError(http.StatusTooManyRequests, rl.message(c))
		}
	}
}

func (rl *RateLimiter) message(c echo.Context) string {
	if rl.config.MessageKey == "" {
		return rl.config.Message
	}
	return i18n.T(c.Request().Context(), rl.config.MessageKey)
}

// hit counts one request for key. Redis failures fall back to the local
// counter so the site stays reachable.
func (rl *RateLimiter) hit(ctx context.Context, key string) (int, time.Time) {
	if rl.config.Redis != nil {
		count, resetAt, err := rl.hitRedis(ctx, rl.config.KeyPrefix+key)
		if err == nil {
			return count, resetAt
		}
		log.Warn().Err(err).Msg("Redis rate limit failed, using in-memory counter")
	}
	return rl.hitMemory(key, time.Now())
}

func (rl *RateLimiter) hitRedis(ctx context.Context, key string) (int, time.Time, error) {
	ttl := int(rl.config.Window.Seconds())
	if ttl < 1 {
		ttl = 1
	}
	result, err := rl.config.Redis.Eval(ctx, rateLimitScript, []string{key}, ttl).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	secs, _ := arr[1].(int64)
	return int(count), time.Now().Add(time.Duration(secs) * time.Second), nil
}

func (rl *RateLimiter) hitMemory(key string, now time.Time) (int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.store[key]
	if !exists || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(rl.config.Window)}
		rl.store[key] = entry
	}
	entry.count++
	return entry.count, entry.expiresAt
}

// cleanup removes expired entries every minute
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, entry := range rl.store {
				if now.After(entry.expiresAt) {
					delete(rl.store, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}
