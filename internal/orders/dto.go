package orders

import (
	"math"
	"sort"
	"time"

	"github.com/angelmondragon/oms-backend/pkg/db/models"
	"github.com/angelmondragon/oms-backend/pkg/enums"
)

// CreateOrderInput is the request to open a new order for a customer.
type CreateOrderInput struct {
	CustomerID int64       `json:"customer_id" validate:"required,gt=0"`
	Items      []ItemInput `json:"items"`
}

// ReplaceItemsInput is the body of a full item replacement. Item rules are
// enforced by the service so every caller gets INVALID_ITEMS.
type ReplaceItemsInput struct {
	Items []ItemInput `json:"items"`
}

// SetStatusInput is the body of a status change.
type SetStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// OrderItemView is a persisted order line.
type OrderItemView struct {
	ProductID      int64 `json:"product_id"`
	Quantity       int64 `json:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents"`
	LineTotalCents int64 `json:"line_total_cents"`
}

// OrderDetail is an order with its items, ordered by product id.
type OrderDetail struct {
	ID         int64             `json:"id"`
	CustomerID int64             `json:"customer_id"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int64             `json:"total_cents"`
	Items      []OrderItemView   `json:"items"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// OrderSummary is an order header without items.
type OrderSummary struct {
	ID         int64             `json:"id"`
	CustomerID int64             `json:"customer_id"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int64             `json:"total_cents"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func newOrderDetail(order *models.Order, items []models.OrderItem) *OrderDetail {
	views := make([]OrderItemView, 0, len(items))
	for _, item := range items {
		views = append(views, OrderItemView{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ProductID < views[j].ProductID })
	return &OrderDetail{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		TotalCents: order.TotalCents,
		Items:      views,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

func newOrderSummaries(rows []models.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, OrderSummary{
			ID:         row.ID,
			CustomerID: row.CustomerID,
			Status:     row.Status,
			TotalCents: row.TotalCents,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return out
}

func sumLineTotals(items []models.OrderItem) (int64, error) {
	var total int64
	for _, item := range items {
		if total > math.MaxInt64-item.LineTotalCents {
			return 0, invalidItems(map[string]string{"items": "order total exceeds the supported range"})
		}
		total += item.LineTotalCents
	}
	return total, nil
}
