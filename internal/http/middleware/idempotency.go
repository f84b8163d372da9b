// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header and, for requests that have
// an idempotency scope, asks a lookup whether the key already produced a
// result. Replays are flagged so handlers can serve the stored result and the
// rate limiter can let them through. Persistence stays behind
// IdempotencyLookup.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-product-api/internal/apperr"
)

// HeaderIdempotencyKey carries the client's idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// MsgInvalidIdempotencyKey is reported for malformed keys.
const MsgInvalidIdempotencyKey = "Invalid Idempotency-Key header."

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultIdemMaxLen = 200
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyLookup reports whether (scope, key) has a live result at now.
// Errors are logged and treated as "no replay".
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (bool, error)

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps key length; <= 0 selects 200.
	MaxLen int
	// Pattern restricts key characters; nil selects a token pattern.
	Pattern *regexp.Regexp
	// Scope names the operation a request belongs to. An empty result means
	// the request is not idempotent and the header is ignored.
	Scope func(*gin.Context) string
}

// IdempotencyValidator validates and stashes the Idempotency-Key of scoped
// requests and flags replays. Invalid keys are rejected with 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdemMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}
	scopeOf := opts.Scope
	if scopeOf == nil {
		scopeOf = func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost {
				return c.FullPath()
			}
			return ""
		}
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		scope := scopeOf(c)
		if key == "" || scope == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			AbortWithError(c, http.StatusBadRequest, apperr.NameValidation, MsgInvalidIdempotencyKey)
			return
		}
		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), scope, key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
			}
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// GetIdempotencyKey returns the validated key and its scope, if any.
func GetIdempotencyKey(c *gin.Context) (scope, key string, ok bool) {
	key = c.GetString(ctxKeyIdemKey)
	scope = c.GetString(ctxKeyIdemScope)
	return scope, key, key != "" && scope != ""
}

// IsReplay reports whether the validator found a stored result for this
// request's key.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}
