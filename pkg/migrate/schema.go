package migrate

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/oms-backend/pkg/db/models"
)

// Models lists every persisted model in foreign key order.
func Models() []any {
	return []any{
		&models.Customer{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OutboxEvent{},
	}
}

// AutoMigrate builds the schema from the GORM models. The SQL migrations are
// written for Postgres, so SQLite databases (local dev, tests) use this instead.
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	for _, model := range Models() {
		if err := conn.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto migrate %T: %w", model, err)
		}
	}
	return nil
}
