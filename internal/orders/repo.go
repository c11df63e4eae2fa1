package orders

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/oms-backend/pkg/db/models"
	"github.com/angelmondragon/oms-backend/pkg/enums"
)

// Repository is the persistence surface of the order engine.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// LockOrder loads the order row with FOR UPDATE.
	LockOrder(ctx context.Context, id int64) (*models.Order, error)
	FindOrder(ctx context.Context, id int64) (*models.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	InsertItems(ctx context.Context, items []models.OrderItem) error
	UpdateItemQuantity(ctx context.Context, itemID, quantity, lineTotalCents int64) error
	DeleteItemsByProduct(ctx context.Context, orderID int64, productIDs []int64) error
	DeleteItems(ctx context.Context, orderID int64) error
	UpdateTotal(ctx context.Context, orderID, totalCents int64) error
	UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error
	DeleteOrder(ctx context.Context, orderID int64) error

	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	ListByCreatedRange(ctx context.Context, start, end time.Time) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("product_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) InsertItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID, quantity, lineTotalCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"quantity":         quantity,
			"line_total_cents": lineTotalCents,
		}).Error
}

func (r *repository) DeleteItemsByProduct(ctx context.Context, orderID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("order_id = ? AND product_id IN ?", orderID, productIDs).
		Delete(&models.OrderItem{}).Error
}

func (r *repository) DeleteItems(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).Error
}

func (r *repository) UpdateTotal(ctx context.Context, orderID, totalCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"total_cents": totalCents,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) DeleteOrder(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", orderID).
		Delete(&models.Order{}).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ListByCreatedRange returns orders created within [start, end], newest first.
func (r *repository) ListByCreatedRange(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
