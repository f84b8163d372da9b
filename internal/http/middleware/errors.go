package middleware

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Status    string `json:"status" example:"error"`
	Name      string `json:"name" example:"ValidationError"`
	Message   string `json:"message" example:"Product name is required and must be a non-empty string."`
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// AbortWithError stops the chain and writes an ErrorBody with status.
func AbortWithError(c *gin.Context, status int, name, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Status:    "error",
		Name:      name,
		Message:   msg,
		RequestID: RequestIDFrom(c),
	})
}
