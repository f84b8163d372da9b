// Package domain defines the catalog's data types: the Product entity held by
// the in-memory store, the client-supplied ProductInput, and the aggregate
// Statistics view. These types carry the JSON shape used on the wire.
package domain

// Product is a catalog record.
//
// Fields:
//   - ID: opaque UUID assigned by the store on creation; immutable.
//   - Name: unique across the catalog under case-insensitive comparison.
//   - Description, Category: non-empty free-form strings.
//   - Price: strictly positive.
//   - InStock: availability flag.
type Product struct {
	ID          string  `json:"id"          example:"a1b2c3d4-e5f6-7890-1234-567890abcdef"`
	Name        string  `json:"name"        example:"Laptop Pro X"`
	Description string  `json:"description" example:"Powerful laptop for professionals."`
	Price       float64 `json:"price"       example:"1200"`
	Category    string  `json:"category"    example:"Electronics"`
	InStock     bool    `json:"inStock"     example:"true"`
}

// ProductInput is a validated create/update payload. It never carries an id:
// ids come from the store (create) or the request path (update).
type ProductInput struct {
	Name        string  `json:"name"        example:"Laptop Pro X"`
	Description string  `json:"description" example:"Powerful laptop for professionals."`
	Price       float64 `json:"price"       example:"1200"`
	Category    string  `json:"category"    example:"Electronics"`
	InStock     bool    `json:"inStock"     example:"true"`
}

// WithID materializes the input as a Product with the given id.
func (in ProductInput) WithID(id string) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		InStock:     in.InStock,
	}
}

// Statistics is the aggregate view over the whole catalog.
// InStockCount + OutOfStockCount == TotalProducts, and the values of
// ProductsByCategory sum to TotalProducts.
type Statistics struct {
	TotalProducts      int            `json:"totalProducts"`
	ProductsByCategory map[string]int `json:"productsByCategory"`
	InStockCount       int            `json:"inStockCount"`
	OutOfStockCount    int            `json:"outOfStockCount"`
}
