package reports

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/oms-backend/internal/repo"
	"github.com/angelmondragon/oms-backend/pkg/enums"
)

// Repository runs read-only aggregate queries over orders.
type Repository struct {
	repo.Base
}

// NewRepository constructs a reports repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type topProductRecord struct {
	ProductID       int64
	SKU             string
	Name            string
	TotalQuantity   int64
	TotalSalesCents int64
}

// TopSellingProducts sums sold quantity and line totals per product for
// non-cancelled orders created within [start, end].
func (r *Repository) TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	selectColumns := []string{
		"p.id AS product_id",
		"p.sku AS sku",
		"p.name AS name",
		"SUM(oi.quantity) AS total_quantity",
		"SUM(oi.line_total_cents) AS total_sales_cents",
	}

	var records []topProductRecord
	err := r.DB(ctx).
		Table("order_items oi").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("o.status <> ?", enums.OrderStatusCancelled).
		Where("o.created_at >= ? AND o.created_at <= ?", start, end).
		Group("p.id, p.sku, p.name").
		Order("total_quantity DESC").
		Order("p.id ASC").
		Limit(limit).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]TopProduct, 0, len(records))
	for _, rec := range records {
		out = append(out, TopProduct{
			ProductID:       rec.ProductID,
			SKU:             rec.SKU,
			Name:            rec.Name,
			TotalQuantity:   rec.TotalQuantity,
			TotalSalesCents: rec.TotalSalesCents,
		})
	}
	return out, nil
}
