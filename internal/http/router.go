// Package httpapi wires the HTTP transport (Gin) to the product service,
// middleware and route handlers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-product-api/docs"
	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/auth"
	"github.com/tbourn/go-product-api/internal/config"
	"github.com/tbourn/go-product-api/internal/http/handlers"
	"github.com/tbourn/go-product-api/internal/http/middleware"
	"github.com/tbourn/go-product-api/internal/repo"
	"github.com/tbourn/go-product-api/internal/services"
	"github.com/tbourn/go-product-api/internal/validation"
)

const (
	// maxBodyBytes caps every request body.
	maxBodyBytes = 1 << 20
	// productsScope namespaces idempotency keys of product creation.
	productsScope = "products"

	msgRouteNotFound    = "Route not found."
	msgMethodNotAllowed = "Method not allowed."
)

// RegisterRoutes attaches middleware and endpoints to r. db holds the
// idempotency records and may be nil, which disables Idempotency-Key
// handling.
//
// Global middleware, in order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: access log, request-scoped logger
//  4. Recovery: panics become 500 after the logger saw them
//  5. Body size limit and gzip
//  6. Metrics
//  7. Rate limiter per client IP, except authenticated API routes
//  8. CORS and security headers
//
// API group middleware, in order: API key, idempotency validator, then the
// same rate limiter, so replays of authenticated requests bypass it and an
// unauthenticated client never reaches the idempotency store.
//
// Routes: GET / and /health are public, /metrics and /swagger/*any (when
// enabled) are public. Everything under cfg.APIBasePath requires X-API-Key,
// including unknown paths and methods there.
func RegisterRoutes(r *gin.Engine, store *repo.ProductStore, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	productsPath := joinPath(cfg.APIBasePath, "/products")

	var idem *repo.IdempotencyRepo
	if db != nil {
		idem = repo.NewIdempotencyRepo(db, cfg.IdempotencyTTL)
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.NewHTTPMetrics(prometheus.DefaultRegisterer).Handler())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authn := auth.NewAuthenticator(cfg.APIKey)
	protected := func(c *gin.Context) bool {
		return underBasePath(c.Request.URL.Path, cfg.APIBasePath)
	}

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.HandlerUnless(func(c *gin.Context) bool {
		// Charged inside the API group instead.
		return c.FullPath() != "" && protected(c) && authn.Authenticate(c.GetHeader(auth.HeaderAPIKey)) == nil
	}))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(requireKeyWhen(protected, authn), func(c *gin.Context) {
		handlers.Fail(c, apperr.NotFound(msgRouteNotFound))
	})
	r.NoMethod(requireKeyWhen(protected, authn), func(c *gin.Context) {
		middleware.AbortWithError(c, http.StatusMethodNotAllowed, apperr.NameMethodNotAllowed, msgMethodNotAllowed)
	})

	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	svc := services.NewProductService(store)
	svc.MaxLimit = cfg.PageSizeMax
	var idemStore handlers.IdempotencyStore
	if idem != nil {
		idemStore = idem
	}
	h := handlers.New(svc, validation.NewProductValidator(), idemStore)

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(
		middleware.APIKey(authn),
		middleware.IdempotencyValidator(
			middleware.IdempotencyOptions{
				MaxLen: 200,
				Scope: func(c *gin.Context) string {
					if c.Request.Method == http.MethodPost && c.FullPath() == productsPath {
						return productsScope
					}
					return ""
				},
			},
			idempotencyLookup(idem),
		),
		rl.Handler(),
	)
	{
		// Static segment first; it must never be captured by :id.
		api.GET("/products/statistics", h.GetStatistics)
		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)
	}
}

// requireKeyWhen runs the API key check for requests matching when. Other
// requests pass through untouched.
func requireKeyWhen(when func(*gin.Context) bool, a *auth.Authenticator) gin.HandlerFunc {
	guard := middleware.APIKey(a)
	return func(c *gin.Context) {
		if when(c) {
			guard(c)
			return
		}
		c.Next()
	}
}

// underBasePath reports whether path lies under base. A root base covers
// every path.
func underBasePath(path, base string) bool {
	if base == "" || base == "/" {
		return true
	}
	return path == base || strings.HasPrefix(path, base+"/")
}

// idempotencyLookup adapts the repository to the middleware contract. A nil
// repository never reports a replay.
func idempotencyLookup(idem *repo.IdempotencyRepo) middleware.IdempotencyLookup {
	if idem == nil {
		return nil
	}
	return func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
		rec, err := idem.Get(ctx, scope, key, now)
		switch {
		case err == nil:
			return rec != nil, nil
		case errors.Is(err, repo.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	}
}

// corsMiddleware allows every origin when none are configured, otherwise
// only the listed ones. Credentials are never allowed.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", auth.HeaderAPIKey, middleware.HeaderIdempotencyKey, middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, handlers.HeaderIdempotencyReplayed, "Retry-After", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}

// limitBody caps the request body at maxBytes; reads past the cap fail with
// *http.MaxBytesError.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinPath joins a normalized base path and a sub-path the way Gin groups do.
func joinPath(base, sub string) string {
	if base == "" || base == "/" {
		return sub
	}
	return base + sub
}
