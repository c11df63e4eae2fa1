package payloads

import "github.com/angelmondragon/oms-backend/pkg/enums"

// OrderLine is the per-item snapshot carried by order events.
type OrderLine struct {
	ProductID      int64 `json:"product_id"`
	Quantity       int64 `json:"quantity"`
	UnitPriceCents int64 `json:"unit_price_cents"`
	LineTotalCents int64 `json:"line_total_cents"`
}

// OrderCreatedEvent is emitted once a new order and its stock reservation commit.
type OrderCreatedEvent struct {
	OrderID    int64             `json:"order_id"`
	CustomerID int64             `json:"customer_id"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int64             `json:"total_cents"`
	Items      []OrderLine       `json:"items"`
}

// StockDelta records how much of a product an operation took (positive) or
// returned (negative).
type StockDelta struct {
	ProductID int64 `json:"product_id"`
	Delta     int64 `json:"delta"`
}

// OrderItemsReplacedEvent is emitted after a pending order's items are rewritten.
type OrderItemsReplacedEvent struct {
	OrderID       int64        `json:"order_id"`
	CustomerID    int64        `json:"customer_id"`
	PreviousTotal int64        `json:"previous_total_cents"`
	TotalCents    int64        `json:"total_cents"`
	Items         []OrderLine  `json:"items"`
	StockDeltas   []StockDelta `json:"stock_deltas"`
}

// OrderStatusChangedEvent is emitted for every persisted status transition.
type OrderStatusChangedEvent struct {
	OrderID    int64             `json:"order_id"`
	CustomerID int64             `json:"customer_id"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
}

// OrderDeletedEvent is emitted when an order is removed; Restocked is empty
// unless the order was still pending.
type OrderDeletedEvent struct {
	OrderID    int64             `json:"order_id"`
	CustomerID int64             `json:"customer_id"`
	Status     enums.OrderStatus `json:"status"`
	Restocked  []StockDelta      `json:"restocked"`
}
