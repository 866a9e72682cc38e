// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/mnuddindev/winoreat/internal/db"
	"gorm.io/gorm"
)

// New returns a fresh in-memory database with models migrated. It is closed
// when the test ends. The pool holds a single connection, so nothing may use
// the returned handle while a transaction on it is open.
func New(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	gdb, err := db.Open(context.Background(), "sqlite", dsn, models, db.WithPool(1, 1, 0))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}
