package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	bucketIdleThreshold = time.Hour
	cleanupInterval     = 30 * time.Minute
)

type clientBucket struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
}

// RateLimiter is a token bucket per client key. Buckets idle for longer
// than an hour are dropped by a background loop until Stop is called.
type RateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientBucket
	maxTokens    int
	refillRate   int
	refillPeriod time.Duration
	now          func() time.Time
	stopCleanup  chan struct{}
	stopOnce     sync.Once
}

// NewRateLimiter starts a limiter holding up to maxTokens per client and
// adding refillRate tokens every refillPeriod.
func NewRateLimiter(maxTokens, refillRate int, refillPeriod time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:      make(map[string]*clientBucket),
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
		now:          time.Now,
		stopCleanup:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// PerMinute returns a limiter allowing n requests per minute per key.
func PerMinute(n int) *RateLimiter {
	return NewRateLimiter(n, n, time.Minute)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, bucket := range rl.clients {
		if now.Sub(bucket.lastSeen) > bucketIdleThreshold {
			delete(rl.clients, key)
		}
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow takes a token for key and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	bucket, exists := rl.clients[key]
	if !exists {
		bucket = &clientBucket{tokens: rl.maxTokens, lastRefill: now}
		rl.clients[key] = bucket
	}
	bucket.lastSeen = now

	if refills := int(now.Sub(bucket.lastRefill) / rl.refillPeriod); refills > 0 {
		bucket.tokens = min(bucket.tokens+refills*rl.refillRate, rl.maxTokens)
		bucket.lastRefill = bucket.lastRefill.Add(time.Duration(refills) * rl.refillPeriod)
	}

	if bucket.tokens <= 0 {
		return false
	}
	bucket.tokens--
	return true
}

// Remaining returns the tokens left for key.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if bucket, ok := rl.clients[key]; ok {
		return bucket.tokens
	}
	return rl.maxTokens
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// RateLimitMiddleware limits requests per client IP and answers 429 when
// the bucket is empty.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		allowed := rl.Allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.maxTokens))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rl.refillPeriod.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
