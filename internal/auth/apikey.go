// Package auth implements shared-secret authentication for the protected
// API prefix.
package auth

import (
	"crypto/subtle"

	"github.com/tbourn/go-product-api/internal/apperr"
)

// HeaderAPIKey carries the shared secret on requests.
const HeaderAPIKey = "X-API-Key"

// MsgUnauthorized is reported for any missing or wrong key.
const MsgUnauthorized = "Unauthorized: Invalid or missing API key."

// Authenticator compares a provided key against the configured secret.
// The secret is fixed at construction and never changes.
type Authenticator struct {
	expected []byte
}

// NewAuthenticator returns an Authenticator for expected.
func NewAuthenticator(expected string) *Authenticator {
	return &Authenticator{expected: []byte(expected)}
}

// Authenticate returns nil when provided equals the expected key exactly,
// otherwise a KindUnauthorized error. An empty key never authenticates.
func (a *Authenticator) Authenticate(provided string) error {
	if provided == "" || len(a.expected) == 0 {
		return apperr.Unauthorized(MsgUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(provided), a.expected) != 1 {
		return apperr.Unauthorized(MsgUnauthorized)
	}
	return nil
}
