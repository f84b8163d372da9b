package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Greeting is the plain-text body of GET /.
const Greeting = "Hello World! Welcome to the Product API."

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Root answers the unauthenticated greeting. It lives outside the API base
// path and is therefore not part of the OpenAPI document.
func Root(c *gin.Context) {
	c.String(http.StatusOK, Greeting)
}

// Health is the liveness check.
func Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{Status: "ok"})
}
