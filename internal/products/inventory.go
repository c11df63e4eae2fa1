package products

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/oms-backend/pkg/db/models"
)

// LockedProduct is the slice of a product row the order engine needs while
// holding its row lock.
type LockedProduct struct {
	ID            int64
	SKU           string
	Name          string
	PriceCents    int64
	StockQuantity int64
	IsActive      bool
}

// InventoryStore is the stock surface of the product table. Implementations
// must run every call on the transaction passed to WithTx.
type InventoryStore interface {
	WithTx(tx *gorm.DB) InventoryStore
	// LockProductsForUpdate locks every existing row in ids with one
	// statement ordered by id. Missing ids are simply absent from the map.
	LockProductsForUpdate(ctx context.Context, ids []int64) (map[int64]LockedProduct, error)
	// ApplyStockDelta subtracts delta from stock_quantity; negative deltas restock.
	ApplyStockDelta(ctx context.Context, productID, delta int64) error
}

// Inventory is the GORM-backed InventoryStore.
type Inventory struct {
	db *gorm.DB
}

func NewInventory(db *gorm.DB) *Inventory {
	return &Inventory{db: db}
}

func (i *Inventory) WithTx(tx *gorm.DB) InventoryStore {
	if tx == nil {
		return i
	}
	return &Inventory{db: tx}
}

func (i *Inventory) LockProductsForUpdate(ctx context.Context, ids []int64) (map[int64]LockedProduct, error) {
	locked := make(map[int64]LockedProduct, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	filter, arg := idFilter(i.db.Dialector.Name(), ids)
	var rows []models.Product
	err := i.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "sku", "name", "price_cents", "stock_quantity", "is_active").
		Where(filter, arg).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		locked[row.ID] = LockedProduct{
			ID:            row.ID,
			SKU:           row.SKU,
			Name:          row.Name,
			PriceCents:    row.PriceCents,
			StockQuantity: row.StockQuantity,
			IsActive:      row.IsActive,
		}
	}
	return locked, nil
}

// idFilter binds the whole id batch as a single bigint[] parameter on
// Postgres so the lock statement text does not grow with the batch.
func idFilter(dialect string, ids []int64) (string, any) {
	if dialect == "postgres" {
		return "id = ANY(?)", pq.Array(ids)
	}
	return "id IN ?", ids
}

func (i *Inventory) ApplyStockDelta(ctx context.Context, productID, delta int64) error {
	if delta == 0 {
		return nil
	}
	res := i.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", delta),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("stock update for product %d affected %d rows", productID, res.RowsAffected)
	}
	return nil
}
