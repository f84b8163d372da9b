// Product HTTP handlers.
//
// This file exposes the REST endpoints of the catalog, all mounted under the
// protected API base path:
//   - GET    /products              (list, filtered and paginated)
//   - GET    /products/statistics   (aggregate counts)
//   - GET    /products/{id}         (read)
//   - POST   /products              (create, Idempotency-Key aware)
//   - PUT    /products/{id}         (full replace)
//   - DELETE /products/{id}         (remove)
//
// Handlers are transport-thin: they decode and validate input, call the
// service and hand any error to fail.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/domain"
	"github.com/tbourn/go-product-api/internal/http/middleware"
	"github.com/tbourn/go-product-api/internal/repo"
	"github.com/tbourn/go-product-api/internal/services"
	"github.com/tbourn/go-product-api/internal/utils"
)

// HeaderIdempotencyReplayed marks a create response served from a previous
// request with the same Idempotency-Key.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// Body decoding messages.
const (
	MsgInvalidJSON  = "Invalid JSON body."
	MsgBodyTooLarge = "Request body too large."
)

// ProductService is the catalog contract consumed by the handlers.
// Implementations must be safe for concurrent use.
type ProductService interface {
	List(ctx context.Context, p services.ListParams) (services.ListResult, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (domain.Statistics, error)
}

// PayloadValidator turns a decoded JSON object into a product input.
type PayloadValidator interface {
	Validate(payload map[string]any) (domain.ProductInput, error)
}

// IdempotencyStore remembers which product an Idempotency-Key produced.
type IdempotencyStore interface {
	Get(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error)
	Save(ctx context.Context, scope, key, resourceID string, status int) error
	Rebind(ctx context.Context, scope, key, resourceID string, status int) error
}

// Handlers groups the product endpoints.
type Handlers struct {
	svc  ProductService
	val  PayloadValidator
	idem IdempotencyStore // optional
}

// New returns Handlers bound to svc and val. idem may be nil, in which case
// Idempotency-Key headers have no effect on create.
func New(svc ProductService, val PayloadValidator, idem IdempotencyStore) *Handlers {
	return &Handlers{svc: svc, val: val, idem: idem}
}

// decodePayload reads the JSON object body. An empty body decodes as {} so
// that validation reports the first missing field.
func decodePayload(c *gin.Context) (map[string]any, error) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return map[string]any{}, nil
		case errors.As(err, &tooLarge):
			return nil, apperr.Validation(MsgBodyTooLarge)
		default:
			return nil, apperr.Validation(MsgInvalidJSON)
		}
	}
	return payload, nil
}

func (h *Handlers) input(c *gin.Context) (domain.ProductInput, error) {
	payload, err := decodePayload(c)
	if err != nil {
		return domain.ProductInput{}, err
	}
	return h.val.Validate(payload)
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List products
// @Description Filters by category (case-insensitive, exact) and by a case-insensitive
// @Description substring of the name, then returns one page. Invalid page or limit
// @Description values fall back to 1 and 10; limit is capped.
// @Tags        Products
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       category  query  string  false  "Category filter"  example(electronics)
// @Param       search    query  string  false  "Name substring"   example(mouse)
// @Param       page      query  int     false  "Page number"      minimum(1) default(1)
// @Param       limit     query  int     false  "Items per page"   minimum(1) default(10)
//
// @Success     200  {object}  services.ListResult
// @Failure     401  {object}  middleware.ErrorBody  "Missing or invalid API key"
// @Failure     500  {object}  middleware.ErrorBody  "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), services.ListParams{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     utils.AtoiDefault(c.Query("page"), services.DefaultPage),
		Limit:    utils.AtoiDefault(c.Query("limit"), services.DefaultLimit),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// GetStatistics godoc
// @ID          getProductStatistics
// @Summary     Catalog statistics
// @Description Counts over the whole catalog: total, per category and by stock status.
// @Tags        Products
// @Produce     json
// @Security    ApiKeyAuth
//
// @Success     200  {object}  domain.Statistics
// @Failure     401  {object}  middleware.ErrorBody  "Missing or invalid API key"
// @Failure     500  {object}  middleware.ErrorBody  "Internal error"
// @Router      /products/statistics [get]
func (h *Handlers) GetStatistics(c *gin.Context) {
	st, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Get a product
// @Tags        Products
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       id  path  string  true  "Product ID"  format(uuid)
//
// @Success     200  {object}  domain.Product
// @Failure     401  {object}  middleware.ErrorBody  "Missing or invalid API key"
// @Failure     404  {object}  middleware.ErrorBody  "Product not found"
// @Failure     500  {object}  middleware.ErrorBody  "Internal error"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Description Names are unique, compared case-insensitively. With an Idempotency-Key
// @Description that already created a product, that product is returned again with
// @Description Idempotency-Replayed: true and nothing new is created.
// @Tags        Products
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       Idempotency-Key  header  string                   false  "Key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    domain.ProductInput  true   "New product"
//
// @Success     201  {object}  domain.Product
// @Header      201  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     400  {object}  middleware.ErrorBody  "Invalid payload or duplicate name"
// @Failure     401  {object}  middleware.ErrorBody  "Missing or invalid API key"
// @Failure     500  {object}  middleware.ErrorBody  "Internal error"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	scope, key, hasKey := middleware.GetIdempotencyKey(c)
	hasKey = hasKey && h.idem != nil

	// stale: the key has a live record but its product was deleted.
	stale := false
	if hasKey && middleware.IsReplay(c) {
		p, status, found := h.replay(ctx, scope, key)
		if found {
			c.Header(HeaderIdempotencyReplayed, "true")
			ok(c, status, p)
			return
		}
		stale = true
	}

	in, err := h.input(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Create(ctx, in)
	if err != nil {
		fail(c, err)
		return
	}

	if hasKey {
		var err error
		if stale {
			err = h.idem.Rebind(ctx, scope, key, p.ID, http.StatusCreated)
		} else {
			err = h.idem.Save(ctx, scope, key, p.ID, http.StatusCreated)
		}
		if err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Str("product_id", p.ID).Msg("idempotency save failed")
		}
	}
	ok(c, http.StatusCreated, p)
}

// replay loads the product a previous request with key created. It reports
// false when the record expired or the product has since been deleted, in
// which case the request is processed normally.
func (h *Handlers) replay(ctx context.Context, scope, key string) (domain.Product, int, bool) {
	rec, err := h.idem.Get(ctx, scope, key, time.Now().UTC())
	if err != nil || rec == nil {
		return domain.Product{}, 0, false
	}
	p, err := h.svc.Get(ctx, rec.ResourceID)
	if err != nil {
		return domain.Product{}, 0, false
	}
	status := rec.Status
	if status == 0 {
		status = http.StatusCreated
	}
	return p, status, true
}

// UpdateProduct godoc
// @ID          updateProduct
// @Summary     Replace a product
// @Description Replaces every field; the id always comes from the path.
// @Tags        Products
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       id    path  string                   true  "Product ID"  format(uuid)
// @Param       body  body  domain.ProductInput  true  "Product fields"
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  middleware.ErrorBody  "Invalid payload or duplicate name"
// @Failure     401  {object}  middleware.ErrorBody  "Missing or invalid API key"
// @Failure     404  {object}  middleware.ErrorBody  "Product not found"
// @Failure     500  {object}  middleware.ErrorBody  "Internal error"
// @Router      /products/{id} [put]
func (h *Handlers) UpdateProduct(c *gin.Context) {
	in, err := h.input(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete a product
// @Tags        Products
// @Security    ApiKeyAuth
//
// @Param       id  path  string  true  "Product ID"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  middleware.ErrorBody  "Missing or invalid API key"
// @Failure     404  {object}  middleware.ErrorBody  "Product not found"
// @Failure     500  {object}  middleware.ErrorBody  "Internal error"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
