package models

import (
	"time"

	"github.com/angelmondragon/oms-backend/pkg/enums"
)

// Order is the header row; TotalCents always equals the sum of its items' line totals.
type Order struct {
	ID         int64             `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID int64             `gorm:"column:customer_id;not null;index:idx_orders_customer_created,priority:1"`
	Customer   *Customer         `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null"`
	TotalCents int64             `gorm:"column:total_cents;not null;default:0"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime;index:idx_orders_customer_created,priority:2;index:idx_orders_created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
