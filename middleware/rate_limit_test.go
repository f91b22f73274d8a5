package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"mavenestudio/services/i18n"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
	})
	defer rl.Close()

	assert.NotNil(t, rl)
	assert.Equal(t, 10, rl.config.Requests)
	assert.Equal(t, time.Minute, rl.config.Window)
	assert.NotNil(t, rl.config.KeyFunc)
	assert.Equal(t, "Too many requests. Please try again later.", rl.config.Message)
	assert.Equal(t, "rl:", rl.config.KeyPrefix)
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "success") }

	t.Run("WithinLimit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimitConfig{Requests: 2, Window: time.Second})
		defer rl.Close()
		handler := rl.Middleware()(ok)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			assert.NoError(t, handler(c))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("ExceededLimit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Minute})
		defer rl.Close()
		handler := rl.Middleware()(ok)

		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.NoError(t, handler(c))

		rec := httptest.NewRecorder()
		c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		err := handler(c)

		he, isHTTP := err.(*echo.HTTPError)
		require.True(t, isHTTP)
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("WindowResets", func(t *testing.T) {
		rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Minute})
		defer rl.Close()

		now := time.Now()
		count, _ := rl.hitMemory("ip", now)
		assert.Equal(t, 1, count)
		count, _ = rl.hitMemory("ip", now)
		assert.Equal(t, 2, count)
		count, _ = rl.hitMemory("ip", now.Add(2*time.Minute))
		assert.Equal(t, 1, count)
	})

	t.Run("HXRequestLocalized", func(t *testing.T) {
		require.NoError(t, i18n.Load())
		rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Minute, MessageKey: "form.errors.rateLimited"})
		defer rl.Close()
		handler := rl.Middleware()(ok)

		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.NoError(t, handler(c))

		req := httptest.NewRequest(http.MethodPost, "/contato/next", nil)
		req.Header.Set("HX-Request", "true")
		req = req.WithContext(i18n.WithLocale(req.Context(), "en"))
		rec := httptest.NewRecorder()
		c = e.NewContext(req, rec)

		err := handler(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
		assert.Equal(t, "Too many attempts. Please wait a moment and try again.", he.Message)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})
}

func TestRateLimiterRedis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	rl := NewRateLimiter(RateLimitConfig{Requests: 2, Window: time.Minute, Redis: client, KeyPrefix: "rl:test:" + uuid.NewString() + ":"})
	defer rl.Close()

	ctx := t.Context()
	for want := 1; want <= 3; want++ {
		count, resetAt := rl.hit(ctx, "1.2.3.4")
		assert.Equal(t, want, count)
		assert.True(t, resetAt.After(time.Now()))
	}
}
