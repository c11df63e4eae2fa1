// Package dbtest opens throwaway databases for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/oms-backend/pkg/config"
	"github.com/angelmondragon/oms-backend/pkg/db"
	"github.com/angelmondragon/oms-backend/pkg/migrate"
)

// OpenSQLite returns a migrated, isolated in-memory SQLite database. The pool
// is pinned to one connection; code under test must run every statement of a
// transaction on the tx handle.
func OpenSQLite(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:oms_%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := migrate.AutoMigrate(client.DB()); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return client
}

// OpenPostgres connects to the database named by OMS_DB_DSN and skips the test
// when it is not set. Callers own cleanup of the rows they create.
func OpenPostgres(t *testing.T) *db.Client {
	t.Helper()

	dsn := os.Getenv(config.EnvDBDSN)
	if dsn == "" {
		t.Skipf("%s is not set", config.EnvDBDSN)
	}
	client, err := db.New(context.Background(), config.DBConfig{
		Driver:       config.DriverPostgres,
		DSN:          dsn,
		MaxOpenConns: 20,
		MaxIdleConns: 5,
	}, nil)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := migrate.AutoMigrate(client.DB()); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	return client
}
