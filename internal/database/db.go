package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"invoicesimple/internal/storage"
)

// Driver names accepted by NewConnection.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewConnection opens the durable store using GORM. SQLite is the default
// for a local single-user session; postgres is available for setups that
// already run one.
func NewConnection(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error
	switch driver {
	case DriverSQLite, "":
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&storage.Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage records: %w", err)
	}

	return db, nil
}
