package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/oms-backend/pkg/db"
	"github.com/angelmondragon/oms-backend/pkg/db/dbtest"
	"github.com/angelmondragon/oms-backend/pkg/db/models"
	"github.com/angelmondragon/oms-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"
)

func setup(t *testing.T) (*db.Client, Service, *Repository) {
	t.Helper()
	client := dbtest.OpenSQLite(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo, client)
	require.NoError(t, err)
	return client, svc, repo
}

func mustCreateProduct(t *testing.T, svc Service, sku string, price, stock int64) *models.Product {
	t.Helper()
	product, err := svc.Create(context.Background(), CreateProductInput{
		SKU:           sku,
		Name:          "Widget " + sku,
		PriceCents:    price,
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return product
}

func TestCreateProductDefaultsActive(t *testing.T) {
	_, svc, _ := setup(t)

	product := mustCreateProduct(t, svc, "W-1", 1250, 10)
	assert.NotZero(t, product.ID)
	assert.True(t, product.IsActive)

	inactive := false
	hidden, err := svc.Create(context.Background(), CreateProductInput{SKU: "W-2", Name: "Hidden", PriceCents: 1, IsActive: &inactive})
	require.NoError(t, err)

	loaded, err := svc.Get(context.Background(), hidden.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsActive)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	_, svc, _ := setup(t)
	mustCreateProduct(t, svc, "DUP", 100, 1)

	_, err := svc.Create(context.Background(), CreateProductInput{SKU: "DUP", Name: "Again", PriceCents: 1})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasReason(err, ReasonSKUTaken))
}

func TestCreateProductRejectsNegativeValues(t *testing.T) {
	_, svc, _ := setup(t)
	_, err := svc.Create(context.Background(), CreateProductInput{SKU: "NEG", Name: "Neg", PriceCents: -1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateProductPartial(t *testing.T) {
	_, svc, _ := setup(t)
	product := mustCreateProduct(t, svc, "UPD", 500, 3)

	price := int64(750)
	inactive := false
	updated, err := svc.Update(context.Background(), product.ID, UpdateProductInput{PriceCents: &price, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, int64(750), updated.PriceCents)
	assert.False(t, updated.IsActive)
	assert.Equal(t, int64(3), updated.StockQuantity)
	assert.Equal(t, product.Name, updated.Name)

	_, err = svc.Update(context.Background(), 9999, UpdateProductInput{PriceCents: &price})
	assert.True(t, pkgerrors.HasReason(err, ReasonProductNotFound))
}

func TestDeleteProduct(t *testing.T) {
	client, svc, _ := setup(t)
	ctx := context.Background()

	product := mustCreateProduct(t, svc, "DEL", 100, 1)
	require.NoError(t, svc.Delete(ctx, product.ID))
	assert.True(t, pkgerrors.HasReason(svc.Delete(ctx, product.ID), ReasonProductNotFound))

	referenced := mustCreateProduct(t, svc, "REF", 100, 5)
	customer := &models.Customer{Email: "ref@example.com", FirstName: "R", LastName: "F"}
	require.NoError(t, client.DB().Create(customer).Error)
	order := &models.Order{CustomerID: customer.ID, Status: enums.OrderStatusPending, TotalCents: 100}
	require.NoError(t, client.DB().Create(order).Error)
	require.NoError(t, client.DB().Create(&models.OrderItem{OrderID: order.ID, ProductID: referenced.ID, Quantity: 1, UnitPriceCents: 100, LineTotalCents: 100}).Error)

	err := svc.Delete(ctx, referenced.ID)
	assert.True(t, pkgerrors.HasReason(err, ReasonProductReferenced))
}

func TestInventoryLockAndApplyDelta(t *testing.T) {
	client, svc, _ := setup(t)
	ctx := context.Background()
	a := mustCreateProduct(t, svc, "A", 100, 10)
	b := mustCreateProduct(t, svc, "B", 200, 4)

	inventory := NewInventory(client.DB())
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		store := inventory.WithTx(tx)
		locked, err := store.LockProductsForUpdate(ctx, []int64{b.ID, a.ID, 12345})
		if err != nil {
			return err
		}
		require.Len(t, locked, 2)
		assert.Equal(t, int64(4), locked[b.ID].StockQuantity)
		assert.Equal(t, int64(200), locked[b.ID].PriceCents)
		assert.True(t, locked[a.ID].IsActive)
		_, missing := locked[12345]
		assert.False(t, missing)

		if err := store.ApplyStockDelta(ctx, a.ID, 3); err != nil {
			return err
		}
		return store.ApplyStockDelta(ctx, b.ID, -2)
	})
	require.NoError(t, err)

	reloadedA, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), reloadedA.StockQuantity)
	reloadedB, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), reloadedB.StockQuantity)
}

func TestInventoryApplyDeltaMissingProduct(t *testing.T) {
	client, _, _ := setup(t)
	err := NewInventory(client.DB()).ApplyStockDelta(context.Background(), 77, 1)
	assert.Error(t, err)
	assert.NoError(t, NewInventory(client.DB()).ApplyStockDelta(context.Background(), 77, 0))
}

func TestInventoryStockNeverNegative(t *testing.T) {
	client, svc, _ := setup(t)
	p := mustCreateProduct(t, svc, "LOW", 100, 1)

	err := NewInventory(client.DB()).ApplyStockDelta(context.Background(), p.ID, 2)
	require.Error(t, err)
	assert.True(t, db.IsCheckViolation(err))
}
