// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"receipt-ledger/internal/config"
	"receipt-ledger/internal/database"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// New returns a fully migrated database living in t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger_test.db")
	if err := database.Migrate(path); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	db, err := database.Init(config.DatabaseConfig{Path: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("init test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
