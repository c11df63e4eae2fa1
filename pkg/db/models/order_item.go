package models

// OrderItem is one product line of an order. UnitPriceCents is the product
// price at the moment the line was first inserted.
type OrderItem struct {
	ID             int64    `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID        int64    `gorm:"column:order_id;not null;uniqueIndex:ux_order_items_order_product,priority:1"`
	ProductID      int64    `gorm:"column:product_id;not null;uniqueIndex:ux_order_items_order_product,priority:2;index:idx_order_items_product"`
	Product        *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity       int64    `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity > 0"`
	UnitPriceCents int64    `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64    `gorm:"column:line_total_cents;not null"`
}
