// Package services – ProductService
//
// This file implements ProductService, the business operations over the
// product catalog: filtered/paginated listing, lookup, create, update,
// delete and aggregate statistics. Payloads arrive already validated
// (see package validation); this layer enforces the rules that depend on
// store state, namely case-insensitive name uniqueness and existence.
//
// Failures are *apperr.Error values so handlers can translate them in one
// place.
package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/domain"
	"github.com/tbourn/go-product-api/internal/repo"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

var tracer = otel.Tracer("github.com/tbourn/go-product-api/internal/services")

// ProductRepo is the store contract required by ProductService.
// *repo.ProductStore satisfies it.
type ProductRepo interface {
	// List returns a snapshot of all products in insertion order.
	List() []domain.Product
	// Len returns the number of products.
	Len() int
	// FindByID returns the product with id, if any.
	FindByID(id string) (domain.Product, bool)
	// FindIndexByID returns the position of id, if any.
	FindIndexByID(id string) (int, bool)
	// ExistsByName reports a case-insensitive name match, ignoring excludeID.
	ExistsByName(name, excludeID string) bool
	// Insert appends a product.
	Insert(p domain.Product)
	// ReplaceAt overwrites the product at index i.
	ReplaceAt(i int, p domain.Product) error
	// RemoveByID deletes the product with id and reports whether it existed.
	RemoveByID(id string) bool
}

// ListParams are the List inputs. Empty Category/Search disable the
// corresponding filter.
type ListParams struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ListResult is one page of the filtered set plus its totals.
type ListResult struct {
	Products      []domain.Product `json:"products"`
	TotalProducts int              `json:"totalProducts"`
	TotalPages    int              `json:"totalPages"`
	CurrentPage   int              `json:"currentPage"`
	ItemsPerPage  int              `json:"itemsPerPage"`
}

// ProductService implements the catalog operations.
type ProductService struct {
	// Repo is the product store.
	Repo ProductRepo
	// MaxLimit caps page sizes; <= 0 leaves them uncapped.
	MaxLimit int
	// NewID generates product ids.
	NewID func() string

	// mu serializes writers so existence and uniqueness checks and the
	// following mutation happen as one step.
	mu sync.Mutex
}

// NewProductService constructs a ProductService over r.
func NewProductService(r ProductRepo) *ProductService {
	s := &ProductService{
		Repo:  r,
		NewID: uuid.NewString,
	}
	catalogSize.Set(float64(r.Len()))
	return s
}

// List filters by category (case-insensitive equality) and by search
// (case-insensitive substring of name), then returns the requested page.
// Pages past the end yield an empty Products slice with the same totals.
func (s *ProductService) List(ctx context.Context, p ListParams) (ListResult, error) {
	_, span := tracer.Start(ctx, "ProductService.List", trace.WithAttributes(
		attribute.String("filter.category", p.Category),
		attribute.String("filter.search", p.Search),
	))
	defer span.End()

	page, limit := s.clamp(p.Page, p.Limit)

	items := s.Repo.List()
	if p.Category != "" {
		want := repo.Fold(p.Category)
		items = filter(items, func(x domain.Product) bool { return repo.Fold(x.Category) == want })
	}
	if p.Search != "" {
		needle := repo.Fold(p.Search)
		items = filter(items, func(x domain.Product) bool { return strings.Contains(repo.Fold(x.Name), needle) })
	}

	total := len(items)
	// limit is unbounded when uncapped; keep the arithmetic overflow-free.
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	pageItems := []domain.Product{}
	if page <= totalPages {
		start := (page - 1) * limit
		end := total
		if total-start > limit {
			end = start + limit
		}
		pageItems = append(pageItems, items[start:end]...)
	}

	span.SetAttributes(attribute.Int("result.total", total), attribute.Int("result.page_items", len(pageItems)))
	return ListResult{
		Products:      pageItems,
		TotalProducts: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		ItemsPerPage:  limit,
	}, nil
}

// Get returns the product with id or a NotFound error.
func (s *ProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	_, span := tracer.Start(ctx, "ProductService.Get", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	p, ok := s.Repo.FindByID(id)
	if !ok {
		return domain.Product{}, errProductNotFound(id)
	}
	return p, nil
}

// Create inserts a new product with a fresh id. A name already used by any
// product (case-insensitively) is a Conflict and leaves the store unchanged.
func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	_, span := tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Repo.ExistsByName(in.Name, "") {
		return domain.Product{}, errDuplicateName(in.Name)
	}
	p := in.WithID(s.NewID())
	s.Repo.Insert(p)

	span.SetAttributes(attribute.String("product.id", p.ID))
	s.recordMutation("create")
	return p, nil
}

// Update replaces every field of product id except the id itself. The
// target must exist (NotFound) and the new name must not belong to another
// product (Conflict); keeping its own name is allowed.
func (s *ProductService) Update(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	_, span := tracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.Repo.FindIndexByID(id)
	if !ok {
		return domain.Product{}, errProductNotFound(id)
	}
	if s.Repo.ExistsByName(in.Name, id) {
		return domain.Product{}, errDuplicateName(in.Name)
	}
	p := in.WithID(id)
	if err := s.Repo.ReplaceAt(idx, p); err != nil {
		span.RecordError(err)
		return domain.Product{}, apperr.As(err)
	}

	s.recordMutation("update")
	return p, nil
}

// Delete removes product id or returns NotFound. Deleting the same id twice
// fails the second time.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "ProductService.Delete", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Repo.RemoveByID(id) {
		return errProductNotFound(id)
	}
	s.recordMutation("delete")
	return nil
}

// Statistics aggregates the whole catalog: totals, counts per category
// (exact category string) and the in-stock partition.
func (s *ProductService) Statistics(ctx context.Context) (domain.Statistics, error) {
	_, span := tracer.Start(ctx, "ProductService.Statistics")
	defer span.End()

	items := s.Repo.List()
	st := domain.Statistics{
		TotalProducts:      len(items),
		ProductsByCategory: make(map[string]int),
	}
	for _, p := range items {
		st.ProductsByCategory[p.Category]++
		if p.InStock {
			st.InStockCount++
		} else {
			st.OutOfStockCount++
		}
	}
	return st, nil
}

// clamp applies defaults to non-positive page/limit and caps limit when
// MaxLimit is set.
func (s *ProductService) clamp(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if s.MaxLimit > 0 && limit > s.MaxLimit {
		limit = s.MaxLimit
	}
	return page, limit
}

func (s *ProductService) recordMutation(op string) {
	productMutations.WithLabelValues(op).Inc()
	catalogSize.Set(float64(s.Repo.Len()))
}

func filter(in []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := in[:0]
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
