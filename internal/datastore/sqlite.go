package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// SQLiteManager handles the catalog database for SQLite.
type SQLiteManager struct {
	baseManager
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
// The pool is limited to one connection: SQLite has a single writer and an
// immediate transaction lock keeps concurrent writers from failing with
// "database is locked" on lock upgrade.
func OpenSQLite(path string, opts Options) (*SQLiteManager, error) {
	if path == "" {
		return nil, validationError("sqlite database path is empty", "database.path", path)
	}
	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	// Build DSN with recommended SQLite pragmas
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON&_txlock=immediate", path)

	gormConfig, log := newGormConfig(opts)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, dbError(err, "open", "", "path", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &SQLiteManager{baseManager{
		db:       db,
		dialect:  DialectSQLite,
		location: path,
		log:      log,
		metrics:  opts.Metrics,
	}}, nil
}
