// Package dbtest opens throwaway sqlite databases for repository tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"supplier-portal/internal/config"
	"supplier-portal/internal/database"

	"gorm.io/gorm"
)

// Open returns a file-backed sqlite database under t.TempDir with the given
// models migrated. A single connection is used so transactions and plain
// queries never contend for the file lock.
func Open(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:       "sqlite",
		DatabaseURL:    "file:" + filepath.Join(t.TempDir(), "portal.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}
