package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tbourn/go-product-api/internal/apperr"
)

func TestAuthenticate(t *testing.T) {
	a := NewAuthenticator("s3cret")

	assert.NoError(t, a.Authenticate("s3cret"))

	for _, bad := range []string{"", "S3CRET", "s3cret ", "s3cre", "other"} {
		err := a.Authenticate(bad)
		assert.Truef(t, apperr.Is(err, apperr.KindUnauthorized), "key %q should be rejected", bad)
		assert.Equal(t, MsgUnauthorized, apperr.As(err).Msg)
	}
}

func TestAuthenticate_EmptySecretRejectsEverything(t *testing.T) {
	a := NewAuthenticator("")
	assert.Error(t, a.Authenticate(""))
	assert.Error(t, a.Authenticate("anything"))
}
