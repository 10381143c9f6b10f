package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenInMemory returns a migrated private in-memory SQLite database. It is
// used by tests and by local tooling that does not need persistence.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection keeps the in-memory database alive and
	// serializes writers the way SQLite expects.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}
