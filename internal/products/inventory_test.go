package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/oms-backend/pkg/db/dbtest"
	"github.com/angelmondragon/oms-backend/pkg/db/models"
)

func TestIDFilterByDialect(t *testing.T) {
	ids := []int64{7, 3, 11}

	filter, arg := idFilter("postgres", ids)
	assert.Equal(t, "id = ANY(?)", filter)
	array, ok := arg.(*pq.Int64Array)
	require.True(t, ok, "expected pq.Int64Array, got %T", arg)
	value, err := array.Value()
	require.NoError(t, err)
	assert.Equal(t, "{7,3,11}", value)

	filter, arg = idFilter("sqlite", ids)
	assert.Equal(t, "id IN ?", filter)
	assert.Equal(t, ids, arg)
}

func TestInventoryLockProductsForUpdatePostgres(t *testing.T) {
	client := dbtest.OpenPostgres(t)
	conn := client.DB()

	suffix := uuid.NewString()
	first := &models.Product{SKU: "LOCK-A-" + suffix, Name: "A", PriceCents: 100, StockQuantity: 4, IsActive: true}
	second := &models.Product{SKU: "LOCK-B-" + suffix, Name: "B", PriceCents: 250, StockQuantity: 9, IsActive: false}
	require.NoError(t, conn.Create(first).Error)
	require.NoError(t, conn.Create(second).Error)
	t.Cleanup(func() {
		conn.Where("id IN ?", []int64{first.ID, second.ID}).Delete(&models.Product{})
	})

	inventory := NewInventory(conn)
	locked, err := inventory.LockProductsForUpdate(context.Background(), []int64{second.ID, first.ID, second.ID + 1_000_000})
	require.NoError(t, err)
	require.Len(t, locked, 2)
	assert.Equal(t, int64(4), locked[first.ID].StockQuantity)
	assert.False(t, locked[second.ID].IsActive)
}
