package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-product-api/internal/apperr"
	"github.com/tbourn/go-product-api/internal/domain"
)

func validPayload() map[string]any {
	return map[string]any{
		"name":        "Laptop Pro X",
		"description": "Powerful laptop.",
		"price":       1200.0,
		"category":    "Electronics",
		"inStock":     true,
	}
}

func TestValidate_OK(t *testing.T) {
	pv := NewProductValidator()
	p := validPayload()
	p["id"] = "ignored"

	in, err := pv.Validate(p)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductInput{
		Name:        "Laptop Pro X",
		Description: "Powerful laptop.",
		Price:       1200,
		Category:    "Electronics",
		InStock:     true,
	}, in)
}

func TestValidate_FieldFailures(t *testing.T) {
	pv := NewProductValidator()
	cases := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"missing name", "name", nil, MsgName},
		{"blank name", "name", "   ", MsgName},
		{"numeric name", "name", 42.0, MsgName},
		{"empty description", "description", "", MsgDescription},
		{"negative price", "price", -5.0, MsgPrice},
		{"zero price", "price", 0.0, MsgPrice},
		{"string price", "price", "10", MsgPrice},
		{"missing price", "price", nil, MsgPrice},
		{"blank category", "category", "\t", MsgCategory},
		{"truthy inStock", "inStock", 1.0, MsgInStock},
		{"string inStock", "inStock", "true", MsgInStock},
		{"missing inStock", "inStock", nil, MsgInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			if tc.value == nil {
				delete(p, tc.field)
			} else {
				p[tc.field] = tc.value
			}
			_, err := pv.Validate(p)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tc.want, apperr.As(err).Msg)
		})
	}
}

func TestValidate_ReportsFirstFailureInFieldOrder(t *testing.T) {
	pv := NewProductValidator()

	_, err := pv.Validate(map[string]any{})
	assert.Equal(t, MsgName, apperr.As(err).Msg)

	_, err = pv.Validate(map[string]any{"name": "x", "price": -1.0, "inStock": "no"})
	assert.Equal(t, MsgDescription, apperr.As(err).Msg)

	_, err = pv.Validate(map[string]any{"name": "x", "description": "y", "price": -1.0, "category": ""})
	assert.Equal(t, MsgPrice, apperr.As(err).Msg)

	_, err = pv.Validate(map[string]any{"name": "x", "description": "y", "price": 1.0, "category": "", "inStock": 3.0})
	assert.Equal(t, MsgCategory, apperr.As(err).Msg)
}

func TestValidate_JSONNumberPrice(t *testing.T) {
	pv := NewProductValidator()
	p := validPayload()
	p["price"] = json.Number("19.99")
	in, err := pv.Validate(p)
	require.NoError(t, err)
	assert.InDelta(t, 19.99, in.Price, 1e-9)

	p["price"] = json.Number("-1")
	_, err = pv.Validate(p)
	assert.Equal(t, MsgPrice, apperr.As(err).Msg)
}

func TestValidate_KeepsUntrimmedStrings(t *testing.T) {
	pv := NewProductValidator()
	p := validPayload()
	p["name"] = "  Spaced  "
	in, err := pv.Validate(p)
	require.NoError(t, err)
	assert.Equal(t, "  Spaced  ", in.Name)
}

func TestValidate_FalseInStockAndTrimmedBlankAreDistinct(t *testing.T) {
	pv := NewProductValidator()

	p := validPayload()
	p["inStock"] = false
	in, err := pv.Validate(p)
	require.NoError(t, err, "false is a present boolean")
	assert.False(t, in.InStock)

	p = validPayload()
	p["description"] = " \n "
	_, err = pv.Validate(p)
	assert.Equal(t, MsgDescription, apperr.As(err).Msg)
}

func TestProductFields_TagsDriveTheChecks(t *testing.T) {
	pv := NewProductValidator()
	name, desc, cat, stock := "n", "d", "c", true
	price := -2.0

	err := pv.v.Struct(productFields{Name: &name, Description: &desc, Price: &price, Category: &cat, InStock: &stock})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "price", verrs[0].Field())
	assert.Equal(t, "gt", verrs[0].Tag())

	err = pv.v.Struct(productFields{})
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 5)
	assert.Equal(t, "name", verrs[0].Field())
}
