// Package storage is a passive key/value mirror of the in-memory state.
// Values are JSON-serialized records; it owns no business logic.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Storage keys for the three persisted records.
const (
	KeyInvoices       = "invoice-simple-invoices"
	KeyCurrentInvoice = "invoice-simple-current-invoice"
	KeySettings       = "invoice-simple-settings"
)

// Record is one durable key/value entry holding a JSON document.
type Record struct {
	Key       string `gorm:"type:varchar(64);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get unmarshals the value stored under key into dest. Returns false with a
// nil error when the key is absent, so callers can fall back to defaults.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var record Record
	err := GetDB(ctx, s.db).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(record.Value), dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Put serializes value and upserts it under key.
func (s *Store) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	record := Record{Key: key, Value: string(data)}
	if err := GetDB(ctx, s.db).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the record under key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := GetDB(ctx, s.db).Delete(&Record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

type contextKey string

const txKey contextKey = "gorm_tx"

// RunInTx executes fn with a transaction injected into the context, so a
// multi-key write (backup import) lands atomically.
func (s *Store) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
}

// GetDB extracts the transaction DB from context if present, otherwise returns rootDB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
