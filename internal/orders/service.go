package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/oms-backend/internal/customers"
	"github.com/angelmondragon/oms-backend/internal/products"
	dbpkg "github.com/angelmondragon/oms-backend/pkg/db"
	"github.com/angelmondragon/oms-backend/pkg/db/models"
	"github.com/angelmondragon/oms-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"
	"github.com/angelmondragon/oms-backend/pkg/logger"
	"github.com/angelmondragon/oms-backend/pkg/metrics"
	"github.com/angelmondragon/oms-backend/pkg/outbox"
	"github.com/angelmondragon/oms-backend/pkg/outbox/payloads"
)

const (
	opCreateOrder       = "create_order"
	opReplaceOrderItems = "replace_order_items"
	opSetOrderStatus    = "set_order_status"
	opDeleteOrder       = "delete_order"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the order transaction engine. Every write runs in one
// transaction and either commits completely or leaves no trace.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDetail, error)
	ReplaceOrderItems(ctx context.Context, orderID int64, items []ItemInput) (*OrderDetail, error)
	SetOrderStatus(ctx context.Context, orderID int64, status string) (*OrderDetail, error)
	DeleteOrder(ctx context.Context, orderID int64) (bool, error)

	GetOrder(ctx context.Context, orderID int64) (*OrderDetail, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]OrderSummary, error)
	ListOrdersByDateRange(ctx context.Context, start, end time.Time) ([]OrderSummary, error)
}

// ServiceParams carries the engine's collaborators. Metrics and Logger are optional.
type ServiceParams struct {
	Repo      Repository
	Customers *customers.Repository
	Inventory products.InventoryStore
	Tx        txRunner
	Outbox    outboxPublisher
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	customers *customers.Repository
	inventory products.InventoryStore
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// NewService builds the order engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      params.Repo,
		customers: params.Customers,
		inventory: params.Inventory,
		tx:        params.Tx,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (result *OrderDetail, err error) {
	started := time.Now()
	defer func() { s.record(opCreateOrder, started, err) }()

	if input.CustomerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id must be greater than 0")
	}
	items, err := normalizeItems(input.Items)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		exists, err := s.customers.WithTx(tx).Exists(ctx, input.CustomerID)
		if err != nil {
			return dbError(err, "check customer")
		}
		if !exists {
			return customers.NotFoundError(input.CustomerID)
		}

		repo := s.repo.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		ids := productIDs(items)
		locked, err := inventory.LockProductsForUpdate(ctx, ids)
		if err != nil {
			return dbError(err, "lock products")
		}
		if err := ensureProductsExist(locked, ids); err != nil {
			return err
		}
		if err := ensureProductsActive(locked, ids); err != nil {
			return err
		}
		for _, item := range items {
			if available := locked[item.ProductID].StockQuantity; available < item.Quantity {
				return products.OutOfStockError(item.ProductID, available, item.Quantity)
			}
		}

		rows := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			price := locked[item.ProductID].PriceCents
			total, err := lineTotal(item.ProductID, price, item.Quantity)
			if err != nil {
				return err
			}
			rows = append(rows, models.OrderItem{
				ProductID:      item.ProductID,
				Quantity:       item.Quantity,
				UnitPriceCents: price,
				LineTotalCents: total,
			})
		}
		orderTotal, err := sumLineTotals(rows)
		if err != nil {
			return err
		}

		order := &models.Order{
			CustomerID: input.CustomerID,
			Status:     enums.OrderStatusPending,
			TotalCents: 0,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return dbError(err, "create order")
		}
		for i := range rows {
			rows[i].OrderID = order.ID
		}
		if err := repo.InsertItems(ctx, rows); err != nil {
			return dbError(err, "insert order items")
		}
		for _, item := range items {
			if err := inventory.ApplyStockDelta(ctx, item.ProductID, item.Quantity); err != nil {
				return dbError(err, "reserve stock")
			}
		}
		if err := repo.UpdateTotal(ctx, order.ID, orderTotal); err != nil {
			return dbError(err, "update order total")
		}

		detail, err := loadDetail(ctx, repo, order.ID)
		if err != nil {
			return err
		}
		if err := s.emit(ctx, tx, enums.EventOrderCreated, detail.ID, payloads.OrderCreatedEvent{
			OrderID:    detail.ID,
			CustomerID: detail.CustomerID,
			Status:     detail.Status,
			TotalCents: detail.TotalCents,
			Items:      orderLines(detail.Items),
		}); err != nil {
			return err
		}
		result = detail
		return nil
	})
	if err != nil {
		return nil, serviceError(err)
	}

	s.logCommitted(ctx, "order.created", result, map[string]any{"item_count": len(result.Items)})
	return result, nil
}

func (s *service) ReplaceOrderItems(ctx context.Context, orderID int64, input []ItemInput) (result *OrderDetail, err error) {
	started := time.Now()
	defer func() { s.record(opReplaceOrderItems, started, err) }()

	items, err := normalizeItems(input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		order, err := lockOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending {
			return orderNotPending(order.ID, order.Status)
		}

		existing, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			return dbError(err, "load order items")
		}
		previous := make(map[int64]models.OrderItem, len(existing))
		for _, item := range existing {
			previous[item.ProductID] = item
		}

		newIDs := productIDs(items)
		requested := make(map[int64]int64, len(items))
		for _, item := range items {
			requested[item.ProductID] = item.Quantity
		}
		union := append([]int64{}, newIDs...)
		var removed []int64
		for _, item := range existing {
			if _, kept := requested[item.ProductID]; !kept {
				union = append(union, item.ProductID)
				removed = append(removed, item.ProductID)
			}
		}

		locked, err := inventory.LockProductsForUpdate(ctx, union)
		if err != nil {
			return dbError(err, "lock products")
		}
		if err := ensureProductsExist(locked, union); err != nil {
			return err
		}
		if err := ensureProductsActive(locked, newIDs); err != nil {
			return err
		}

		deltas := make([]payloads.StockDelta, 0, len(union))
		for _, id := range union {
			delta := requested[id] - previous[id].Quantity
			if delta == 0 {
				continue
			}
			if available := locked[id].StockQuantity; delta > 0 && available < delta {
				return products.OutOfStockError(id, available, delta)
			}
			deltas = append(deltas, payloads.StockDelta{ProductID: id, Delta: delta})
		}
		for _, d := range deltas {
			if err := inventory.ApplyStockDelta(ctx, d.ProductID, d.Delta); err != nil {
				return dbError(err, "apply stock delta")
			}
		}

		if err := repo.DeleteItemsByProduct(ctx, order.ID, removed); err != nil {
			return dbError(err, "delete removed items")
		}
		var inserts []models.OrderItem
		for _, item := range items {
			old, ok := previous[item.ProductID]
			if !ok {
				price := locked[item.ProductID].PriceCents
				total, err := lineTotal(item.ProductID, price, item.Quantity)
				if err != nil {
					return err
				}
				inserts = append(inserts, models.OrderItem{
					OrderID:        order.ID,
					ProductID:      item.ProductID,
					Quantity:       item.Quantity,
					UnitPriceCents: price,
					LineTotalCents: total,
				})
				continue
			}
			if old.Quantity == item.Quantity {
				continue
			}
			total, err := lineTotal(item.ProductID, old.UnitPriceCents, item.Quantity)
			if err != nil {
				return err
			}
			if err := repo.UpdateItemQuantity(ctx, old.ID, item.Quantity, total); err != nil {
				return dbError(err, "update order item")
			}
		}
		if err := repo.InsertItems(ctx, inserts); err != nil {
			return dbError(err, "insert order items")
		}

		current, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			return dbError(err, "reload order items")
		}
		orderTotal, err := sumLineTotals(current)
		if err != nil {
			return err
		}
		if err := repo.UpdateTotal(ctx, order.ID, orderTotal); err != nil {
			return dbError(err, "update order total")
		}

		detail, err := loadDetail(ctx, repo, order.ID)
		if err != nil {
			return err
		}
		if err := s.emit(ctx, tx, enums.EventOrderItemsReplaced, detail.ID, payloads.OrderItemsReplacedEvent{
			OrderID:       detail.ID,
			CustomerID:    detail.CustomerID,
			PreviousTotal: order.TotalCents,
			TotalCents:    detail.TotalCents,
			Items:         orderLines(detail.Items),
			StockDeltas:   deltas,
		}); err != nil {
			return err
		}
		result = detail
		return nil
	})
	if err != nil {
		return nil, serviceError(err)
	}

	s.logCommitted(ctx, "order.items_replaced", result, map[string]any{"item_count": len(result.Items)})
	return result, nil
}

func (s *service) SetOrderStatus(ctx context.Context, orderID int64, status string) (result *OrderDetail, err error) {
	started := time.Now()
	defer func() { s.record(opSetOrderStatus, started, err) }()

	target, parseErr := enums.ParseOrderStatus(status)
	if parseErr != nil {
		return nil, invalidStatus(status)
	}

	var from enums.OrderStatus
	changed := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := lockOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		items, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			return dbError(err, "load order items")
		}
		from = order.Status
		if from == target {
			result = newOrderDetail(order, items)
			return nil
		}
		if !CanTransition(from, target) {
			return invalidTransition(from, target)
		}

		if target == enums.OrderStatusCancelled && restocksOnCancel(from) {
			if _, err := s.restock(ctx, tx, items); err != nil {
				return err
			}
		}
		if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
			return dbError(err, "update order status")
		}

		detail, err := loadDetail(ctx, repo, order.ID)
		if err != nil {
			return err
		}
		if err := s.emit(ctx, tx, enums.EventOrderStatusChanged, detail.ID, payloads.OrderStatusChangedEvent{
			OrderID:    detail.ID,
			CustomerID: detail.CustomerID,
			From:       from,
			To:         target,
		}); err != nil {
			return err
		}
		changed = true
		result = detail
		return nil
	})
	if err != nil {
		return nil, serviceError(err)
	}

	if changed {
		s.logCommitted(ctx, "order.status_changed", result, map[string]any{"from": from, "to": target})
	}
	return result, nil
}

func (s *service) DeleteOrder(ctx context.Context, orderID int64) (deleted bool, err error) {
	started := time.Now()
	defer func() { s.record(opDeleteOrder, started, err) }()

	var snapshot *OrderDetail
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.LockOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return dbError(err, "lock order")
		}
		if order.Status != enums.OrderStatusPending {
			return orderNotPending(order.ID, order.Status)
		}

		items, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			return dbError(err, "load order items")
		}
		restocked, err := s.restock(ctx, tx, items)
		if err != nil {
			return err
		}
		if err := repo.DeleteItems(ctx, order.ID); err != nil {
			return dbError(err, "delete order items")
		}
		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return dbError(err, "delete order")
		}

		if err := s.emit(ctx, tx, enums.EventOrderDeleted, order.ID, payloads.OrderDeletedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Status:     order.Status,
			Restocked:  restocked,
		}); err != nil {
			return err
		}
		snapshot = newOrderDetail(order, items)
		deleted = true
		return nil
	})
	if err != nil {
		return false, serviceError(err)
	}

	if deleted {
		s.logCommitted(ctx, "order.deleted", snapshot, map[string]any{"item_count": len(snapshot.Items)})
	}
	return deleted, nil
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*OrderDetail, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound(orderID)
		}
		return nil, dbError(err, "load order")
	}
	items, err := s.repo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, dbError(err, "load order items")
	}
	return newOrderDetail(order, items), nil
}

func (s *service) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]OrderSummary, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dbError(err, "list customer orders")
	}
	return newOrderSummaries(rows), nil
}

func (s *service) ListOrdersByDateRange(ctx context.Context, start, end time.Time) ([]OrderSummary, error) {
	if start.After(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start must not be after end").
			WithDetails(map[string]string{"start": start.UTC().Format(time.RFC3339), "end": end.UTC().Format(time.RFC3339)})
	}
	rows, err := s.repo.ListByCreatedRange(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, dbError(err, "list orders by date range")
	}
	return newOrderSummaries(rows), nil
}

// restock locks the products of items and returns every unit to stock.
func (s *service) restock(ctx context.Context, tx *gorm.DB, items []models.OrderItem) ([]payloads.StockDelta, error) {
	restocked := make([]payloads.StockDelta, 0, len(items))
	if len(items) == 0 {
		return restocked, nil
	}
	inventory := s.inventory.WithTx(tx)

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	if _, err := inventory.LockProductsForUpdate(ctx, ids); err != nil {
		return nil, dbError(err, "lock products")
	}
	for _, item := range items {
		if err := inventory.ApplyStockDelta(ctx, item.ProductID, -item.Quantity); err != nil {
			return nil, dbError(err, "restock product")
		}
		restocked = append(restocked, payloads.StockDelta{ProductID: item.ProductID, Delta: -item.Quantity})
	}
	return restocked, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, orderID int64, data any) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		RequestID:     logger.RequestIDFromContext(ctx),
		Version:       1,
		Data:          data,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue outbox event")
	}
	return nil
}

func (s *service) record(operation string, started time.Time, err error) {
	s.metrics.ObserveDuration(operation, time.Since(started))
	if err == nil {
		s.metrics.IncSuccess(operation)
		return
	}
	s.metrics.IncFailure(operation, failureReason(err))
	if pkgerrors.HasReason(err, products.ReasonOutOfStock) {
		s.metrics.IncStockConflict(operation)
	}
}

func (s *service) logCommitted(ctx context.Context, msg string, detail *OrderDetail, fields map[string]any) {
	if s.logg == nil || detail == nil {
		return
	}
	ctx = s.logg.WithOrderID(ctx, detail.ID)
	ctx = s.logg.WithCustomerID(ctx, detail.CustomerID)
	fields["status"] = detail.Status
	fields["total_cents"] = detail.TotalCents
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}

func lockOrder(ctx context.Context, repo Repository, orderID int64) (*models.Order, error) {
	order, err := repo.LockOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound(orderID)
		}
		return nil, dbError(err, "lock order")
	}
	return order, nil
}

func loadDetail(ctx context.Context, repo Repository, orderID int64) (*OrderDetail, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, dbError(err, "reload order")
	}
	items, err := repo.ListItems(ctx, orderID)
	if err != nil {
		return nil, dbError(err, "reload order items")
	}
	return newOrderDetail(order, items), nil
}

func ensureProductsExist(locked map[int64]products.LockedProduct, ids []int64) error {
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return products.NotFoundError(id)
		}
	}
	return nil
}

func ensureProductsActive(locked map[int64]products.LockedProduct, ids []int64) error {
	for _, id := range ids {
		if !locked[id].IsActive {
			return products.InactiveError(id)
		}
	}
	return nil
}

func orderLines(items []OrderItemView) []payloads.OrderLine {
	lines := make([]payloads.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, payloads.OrderLine{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return lines
}

// dbError wraps an untyped persistence failure. Lock waits that hit the
// configured timeout keep their own reason so clients know to retry.
func dbError(err error, msg string) error {
	if dbpkg.IsLockTimeout(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wait timed out").
			WithReason(ReasonLockTimeout)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func serviceError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return dbError(err, "commit transaction")
}

func failureReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return string(pkgerrors.CodeInternal)
	}
	if reason := typed.Reason(); reason != "" {
		return string(reason)
	}
	return string(typed.Code())
}
