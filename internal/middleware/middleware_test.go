package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateLimiter_Allow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rl := NewRateLimiter(2, 1, time.Second)
	defer rl.Stop()
	rl.now = clock.now

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "bucket is empty")
	assert.True(t, rl.Allow("b"), "keys have separate buckets")

	clock.advance(1500 * time.Millisecond)
	assert.True(t, rl.Allow("a"), "one token refilled")
	assert.False(t, rl.Allow("a"))

	clock.advance(500 * time.Millisecond)
	assert.True(t, rl.Allow("a"), "partial period carries over")

	clock.advance(time.Hour)
	assert.True(t, rl.Allow("a"))
	assert.Equal(t, 1, rl.Remaining("a"), "refill is capped at maxTokens")
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rl := NewRateLimiter(1, 1, time.Minute)
	defer rl.Stop()
	rl.now = clock.now

	assert.True(t, rl.Allow("idle"))
	clock.advance(50 * time.Minute)
	assert.True(t, rl.Allow("active"))
	clock.advance(20 * time.Minute)

	rl.cleanup()
	assert.Equal(t, 1, rl.size(), "only the bucket idle for over an hour is dropped")

	assert.True(t, rl.Allow("idle"), "a dropped client starts with a full bucket")
	assert.Equal(t, 2, rl.size())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := PerMinute(5)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(rl))
	r.POST("/generate", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	defer rl.Stop()
	r := newLimitedRouter(rl)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests, please try again later"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)

	fields := entries[2].ContextMap()
	assert.Equal(t, "/boom", fields["path"])
	assert.Equal(t, int64(500), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
