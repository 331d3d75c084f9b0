// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"testing" // Test cleanup

	"gorm.io/driver/sqlite" // SQLite driver for GORM
	"gorm.io/gorm"          // GORM ORM library
	"gorm.io/gorm/logger"   // Silenced query log

	"social_network/internal/db" // Migrations
)

// New returns a migrated in-memory sqlite database that lives as long as the test.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(conn); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return conn
}
