package models

import "time"

// Product is a sellable catalog entry. StockQuantity only moves through
// locked stock deltas or an explicit admin update.
type Product struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SKU           string    `gorm:"column:sku;not null;uniqueIndex:ux_products_sku" json:"sku"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Description   *string   `gorm:"column:description" json:"description"`
	PriceCents    int64     `gorm:"column:price_cents;not null;check:chk_products_price_cents,price_cents >= 0" json:"price_cents"`
	StockQuantity int64     `gorm:"column:stock_quantity;not null;check:chk_products_stock_quantity,stock_quantity >= 0" json:"stock_quantity"`
	IsActive      bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
