package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/auth"
)

// APIKey rejects requests whose X-API-Key header does not authenticate.
func APIKey(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Authenticate(c.GetHeader(auth.HeaderAPIKey)); err != nil {
			e := apperr.As(err)
			LoggerFrom(c).Warn().Str("kind", e.Kind.String()).Msg("authentication failed")
			AbortWithError(c, http.StatusUnauthorized, e.Name, e.Msg)
			return
		}
		c.Next()
	}
}
