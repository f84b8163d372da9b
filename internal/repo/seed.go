package repo

import (
	"github.com/google/uuid"

	"github.com/tbourn/go-product-api/internal/domain"
)

// SeedProducts is the catalog the process starts with. Ids are assigned
// freshly on every start.
var SeedProducts = []domain.ProductInput{
	{
		Name:        "Laptop Pro X",
		Description: "Powerful laptop for professionals with 16GB RAM and 512GB SSD.",
		Price:       1200,
		Category:    "Electronics",
		InStock:     true,
	},
	{
		Name:        "Wireless Mouse Ergo",
		Description: "Ergonomic wireless mouse with adjustable DPI.",
		Price:       25,
		Category:    "Electronics",
		InStock:     true,
	},
	{
		Name:        "Mechanical Keyboard RGB",
		Description: "Gaming mechanical keyboard with customizable RGB lighting.",
		Price:       80,
		Category:    "Electronics",
		InStock:     false,
	},
	{
		Name:        "Desk Lamp LED",
		Description: "Modern LED desk lamp with touch control and dimming.",
		Price:       45,
		Category:    "Home & Office",
		InStock:     true,
	},
	{
		Name:        "Smartwatch Sport",
		Description: "Fitness smartwatch with heart rate monitoring and GPS.",
		Price:       150,
		Category:    "Wearables",
		InStock:     true,
	},
}

// NewSeededProductStore returns a store holding seed, each with a new UUID.
func NewSeededProductStore(seed []domain.ProductInput) *ProductStore {
	s := NewProductStore()
	for _, in := range seed {
		s.Insert(in.WithID(uuid.NewString()))
	}
	return s
}
