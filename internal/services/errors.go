// Package services defines the business logic for the product catalog.
// This file centralizes the messages and constructors for service-level
// failures so that handlers and tests can rely on stable wording.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import (
	"fmt"

	"github.com/tbourn/go-product-api/internal/apperr"
)

// errProductNotFound reports that no product has id.
func errProductNotFound(id string) error {
	return apperr.NotFound(fmt.Sprintf("Product with ID %s not found.", id))
}

// errDuplicateName reports that another product already uses name
// (case-insensitively).
func errDuplicateName(name string) error {
	return apperr.Conflict(fmt.Sprintf("Product with name '%s' already exists.", name))
}
