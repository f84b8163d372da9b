// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory, per-client token-bucket rate limiter
// built on golang.org/x/time/rate. Buckets are keyed by client IP, idle
// buckets are swept opportunistically, and idempotent replays bypass the
// limiter. The limiter is process-local.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-product-api/internal/apperr"
)

const (
	// MsgRateLimited is reported with 429 responses.
	MsgRateLimited = "Too many requests, please try again later."

	sweepEvery  = 5000
	idleTimeout = 10 * time.Minute
)

// KeyFunc maps a request to its bucket.
type KeyFunc func(*gin.Context) string

// KeyByClientIP buckets requests by client IP.
func KeyByClientIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter, safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

// NewRateLimiter returns a limiter refilling rps tokens per second with the
// given burst (coerced to at least 1). rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByClientIP()
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// limiter returns the bucket for key, creating it on first use. Every
// sweepEvery lookups idle buckets are dropped; the sweep runs before the
// lookup so a stale bucket for key is recreated rather than refreshed.
func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		rl.sweep(now)
		rl.lookups = 0
	}
	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// sweep drops buckets idle for at least idleTimeout. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= idleTimeout {
			delete(rl.visitors, k)
		}
	}
}

// retryAfter is the whole number of seconds until one token is available.
func (rl *RateLimiter) retryAfter() string {
	secs := math.Ceil(1 / float64(rl.rps))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(int(secs))
}

// Handler returns the limiting middleware. Rejected requests get 429 with
// the error body and a Retry-After header.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return rl.HandlerUnless(nil)
}

// HandlerUnless is Handler for requests where skip reports false. It lets
// one limiter be mounted at two points of a chain while charging each
// request once.
func (rl *RateLimiter) HandlerUnless(skip func(*gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rps <= 0 || IsRateBypass(c) || (skip != nil && skip(c)) {
			c.Next()
			return
		}
		if rl.limiter(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", rl.retryAfter())
		AbortWithError(c, http.StatusTooManyRequests, apperr.NameTooManyRequests, MsgRateLimited)
	}
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay that must not consume tokens.
func IsRateBypass(c *gin.Context) bool {
	return c.GetBool(ctxKeyRateBypass)
}
