// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/diewo77/go-schools/internal/config"
	"github.com/diewo77/go-schools/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var nameCleaner = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// Open returns a fresh database private to t. Each test gets its own
// in-memory file named after the test, dropped when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", nameCleaner.Replace(t.Name()))
	conn, err := db.Connect(config.DatabaseConfig{Driver: "sqlite", DBName: dsn}, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

// OpenSeeded is Open followed by db.Seed.
func OpenSeeded(t testing.TB) *gorm.DB {
	t.Helper()
	conn := Open(t)
	if err := db.Seed(conn); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return conn
}
