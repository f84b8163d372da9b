// Package handlers provides the HTTP handlers of the product API.
//
// This file is the single place where failures become HTTP responses. Every
// handler passes its error to fail, which maps the apperr.Kind to a status,
// logs the failure with the request-scoped logger and writes the uniform
// error body:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "status": "error",
//	  "name": "NotFoundError",
//	  "message": "Product with ID 42 not found.",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000"
//	}
//
// Internal failures always answer with the generic message; their cause only
// reaches the logs.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/http/middleware"
)

// statusFor maps a failure kind to its HTTP status.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and aborts the request with the matching error body.
// Client errors are logged at warn, server errors at error with the cause.
func fail(c *gin.Context, err error) {
	e := apperr.As(err)
	status := statusFor(e.Kind)

	lg := middleware.LoggerFrom(c)
	ev := lg.Warn()
	if status >= http.StatusInternalServerError {
		ev = lg.Error().Err(e.Cause)
	}
	ev.Int("status", status).
		Str("kind", e.Kind.String()).
		Str("message", e.Msg).
		Msg("request failed")

	middleware.AbortWithError(c, status, e.Name, e.Msg)
}

// Fail is the exported variant of fail for route-level fallbacks.
func Fail(c *gin.Context, err error) { fail(c, err) }

// ok writes body as JSON with status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes 204 with no body.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
