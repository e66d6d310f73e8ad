// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"blogapi/internal/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated database backed by a file in t.TempDir().
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(db.SQLiteDSN(path)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("db migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}
