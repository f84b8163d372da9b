// Package repo implements the data layer. This file provides ProductStore,
// the in-memory product collection.
//
// The collection is an arena: a slice in insertion order plus an id→index
// map and a folded-name→id map. The store performs no validation and no
// business checks; callers are expected to have checked id and name
// uniqueness before Insert/ReplaceAt.
//
// Concurrency:
//   - Every method takes the store's RWMutex, so individual calls are safe
//     for concurrent use.
//   - Check-then-act sequences (ExistsByName followed by Insert) are NOT
//     atomic at this level; callers serialize them (see services).
package repo

import (
	"errors"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/domain"
)

var (
	errIndexOutOfRange = errors.New("product index out of range")
	errIDMismatch      = errors.New("product id does not match slot")
)

// Fold lower-cases s for case-insensitive comparison. A cases.Caser is
// stateful and not safe for concurrent use, so Fold builds one per call.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// ProductStore owns the product collection.
type ProductStore struct {
	mu     sync.RWMutex
	items  []domain.Product
	byID   map[string]int
	byName map[string]string
}

// NewProductStore returns an empty store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		byID:   make(map[string]int),
		byName: make(map[string]string),
	}
}

// List returns a snapshot copy of the collection in insertion order.
func (s *ProductStore) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored products.
func (s *ProductStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// FindByID returns the product with id, if any.
func (s *ProductStore) FindByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.items[i], true
}

// FindIndexByID returns the position of id in insertion order, if present.
func (s *ProductStore) FindIndexByID(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	return i, ok
}

// ExistsByName reports whether a product other than excludeID has name,
// compared case-insensitively. Pass "" to exclude nothing.
func (s *ProductStore) ExistsByName(name, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[Fold(name)]
	if !ok {
		return false
	}
	return excludeID == "" || id != excludeID
}

// Insert appends p.
func (s *ProductStore) Insert(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, p)
	s.byID[p.ID] = len(s.items) - 1
	s.byName[Fold(p.Name)] = p.ID
}

// ReplaceAt overwrites the product at index i. The id at that position is
// expected to equal p.ID.
func (s *ProductStore) ReplaceAt(i int, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return apperr.Internal(errIndexOutOfRange)
	}
	old := s.items[i]
	if old.ID != p.ID {
		return apperr.Internal(errIDMismatch)
	}
	if key := Fold(old.Name); s.byName[key] == old.ID {
		delete(s.byName, key)
	}
	s.items[i] = p
	s.byName[Fold(p.Name)] = p.ID
	return nil
}

// RemoveByID deletes the product with id and reports whether one existed.
func (s *ProductStore) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.byID, id)
	if key := Fold(removed.Name); s.byName[key] == id {
		delete(s.byName, key)
	}
	// Positions after i shifted left by one.
	for j := i; j < len(s.items); j++ {
		s.byID[s.items[j].ID] = j
	}
	return true
}
