// Package validation checks client payloads before they reach the service
// layer. It is independent of store state: duplicate names and missing
// records are business rules and live in services.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/domain"
)

// Messages reported for the first failing field.
const (
	MsgName        = "Product name is required and must be a non-empty string."
	MsgDescription = "Product description is required and must be a non-empty string."
	MsgPrice       = "Product price is required and must be a positive number."
	MsgCategory    = "Product category is required and must be a non-empty string."
	MsgInStock     = "Product inStock status is required and must be a boolean."
)

// messages maps a payload field to the message reported when it fails.
var messages = map[string]string{
	"name":        MsgName,
	"description": MsgDescription,
	"price":       MsgPrice,
	"category":    MsgCategory,
	"inStock":     MsgInStock,
}

// productFields is the payload after type extraction. A nil pointer means the
// key was absent or held a value of the wrong JSON type. Field order is the
// order in which failures are reported.
type productFields struct {
	Name        *string  `json:"name" validate:"required,notblank"`
	Description *string  `json:"description" validate:"required,notblank"`
	Price       *float64 `json:"price" validate:"required,gt=0"`
	Category    *string  `json:"category" validate:"required,notblank"`
	InStock     *bool    `json:"inStock" validate:"required"`
}

// ProductValidator validates decoded JSON product payloads.
//
// Fields are checked in a fixed order (name, description, price, category,
// inStock) and only the first failure is reported, so responses are
// deterministic when several fields are wrong. Type checks are strict: a
// numeric string is not a price and 1 is not a boolean.
type ProductValidator struct {
	v *validator.Validate
}

// NewProductValidator returns a ready validator. Field errors are named by
// their JSON keys.
func NewProductValidator() *ProductValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &ProductValidator{v: v}
}

// Validate checks payload (a decoded JSON object) and returns the typed
// input. Any "id" key in payload is ignored. Failures are
// *apperr.Error with KindValidation.
func (pv *ProductValidator) Validate(payload map[string]any) (domain.ProductInput, error) {
	f := productFields{
		Name:        stringField(payload, "name"),
		Description: stringField(payload, "description"),
		Price:       numberField(payload, "price"),
		Category:    stringField(payload, "category"),
		InStock:     boolField(payload, "inStock"),
	}
	if err := pv.v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if msg, ok := messages[verrs[0].Field()]; ok {
				return domain.ProductInput{}, apperr.Validation(msg)
			}
		}
		return domain.ProductInput{}, apperr.Internal(err)
	}

	return domain.ProductInput{
		Name:        *f.Name,
		Description: *f.Description,
		Price:       *f.Price,
		Category:    *f.Category,
		InStock:     *f.InStock,
	}, nil
}

func stringField(payload map[string]any, key string) *string {
	if s, ok := payload[key].(string); ok {
		return &s
	}
	return nil
}

func numberField(payload map[string]any, key string) *float64 {
	switch n := payload[key].(type) {
	case float64:
		return &n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func boolField(payload map[string]any, key string) *bool {
	if b, ok := payload[key].(bool); ok {
		return &b
	}
	return nil
}
