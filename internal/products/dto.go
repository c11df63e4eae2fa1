package products

// CreateProductInput carries a new catalog entry.
type CreateProductInput struct {
	SKU           string  `json:"sku" validate:"required,max=64"`
	Name          string  `json:"name" validate:"required,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	PriceCents    int64   `json:"price_cents" validate:"min=0"`
	StockQuantity int64   `json:"stock_quantity" validate:"min=0"`
	IsActive      *bool   `json:"is_active"`
}

// UpdateProductInput is a partial update. StockQuantity here is an admin
// override that bypasses the order engine.
type UpdateProductInput struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	PriceCents    *int64  `json:"price_cents" validate:"omitempty,min=0"`
	StockQuantity *int64  `json:"stock_quantity" validate:"omitempty,min=0"`
	IsActive      *bool   `json:"is_active"`
}
