// Package backup serializes the persisted dataset to a portable JSON
// document and restores it. The format is versionless: a single object
// { "invoices": [...], "settings": {...} }, exactly what Export writes and
// Import reads.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicesimple/internal/model"
	"invoicesimple/internal/storage"
)

// Document is the backup file shape.
type Document struct {
	Invoices []model.Invoice       `json:"invoices"`
	Settings model.InvoiceSettings `json:"settings"`
}

// Result reports an import outcome. Malformed input yields Success=false
// with a message; Import never panics across this boundary.
type Result struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

// Storage is the slice of the persistence adapter the backup layer needs.
type Storage interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Put(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Export reads the persisted collections into a single document.
func (s *Service) Export(ctx context.Context) (Document, error) {
	doc := Document{
		Invoices: []model.Invoice{},
		Settings: model.DefaultSettings(),
	}
	if _, err := s.storage.Get(ctx, storage.KeyInvoices, &doc.Invoices); err != nil {
		return Document{}, fmt.Errorf("failed to export invoices: %w", err)
	}
	if _, err := s.storage.Get(ctx, storage.KeySettings, &doc.Settings); err != nil {
		return Document{}, fmt.Errorf("failed to export settings: %w", err)
	}
	return doc, nil
}

// FileName suggests a download name for an export taken at the given time.
func FileName(now time.Time) string {
	return "invoice-simple-backup-" + now.Format("2006-01-02") + ".json"
}

// Import validates the raw document and replaces the persisted collections
// with its typed-valid fields. A valid invoices array fully replaces the
// collection (no merge, no dedup); a valid settings object fully replaces
// settings. A document that is not a JSON object, or that carries a field
// of the wrong shape, yields a failure result; validly-typed fields are
// still applied.
func (s *Service) Import(ctx context.Context, data []byte) Result {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return Result{Success: false, Message: "Invalid data format"}
	}

	var invoices []model.Invoice
	haveInvoices := false
	malformed := ""
	if rawInvoices, ok := raw["invoices"]; ok {
		if err := json.Unmarshal(rawInvoices, &invoices); err != nil || invoices == nil {
			malformed = "invoices is not an array"
		} else {
			haveInvoices = true
		}
	}

	var settings model.InvoiceSettings
	haveSettings := false
	if rawSettings, ok := raw["settings"]; ok {
		if err := json.Unmarshal(rawSettings, &settings); err != nil || string(rawSettings) == "null" {
			if malformed == "" {
				malformed = "settings is not an object"
			}
		} else {
			haveSettings = true
		}
	}

	err := s.storage.RunInTx(ctx, func(txCtx context.Context) error {
		if haveInvoices {
			if err := s.storage.Put(txCtx, storage.KeyInvoices, invoices); err != nil {
				return err
			}
		}
		if haveSettings {
			if err := s.storage.Put(txCtx, storage.KeySettings, settings); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Import failed: %v", err)}
	}

	if malformed != "" {
		return Result{Success: false, Message: "Invalid data format: " + malformed, Imported: len(invoices)}
	}
	return Result{
		Success:  true,
		Message:  fmt.Sprintf("Imported %d invoices successfully", len(invoices)),
		Imported: len(invoices),
	}
}

// ClearInvoices deletes the persisted collection. Irreversible; the caller
// owns any confirmation policy.
func (s *Service) ClearInvoices(ctx context.Context) error {
	return s.storage.Delete(ctx, storage.KeyInvoices)
}

// ClearAll deletes every persisted record: invoices, draft and settings.
func (s *Service) ClearAll(ctx context.Context) error {
	return s.storage.RunInTx(ctx, func(txCtx context.Context) error {
		for _, key := range []string{storage.KeyInvoices, storage.KeyCurrentInvoice, storage.KeySettings} {
			if err := s.storage.Delete(txCtx, key); err != nil {
				return err
			}
		}
		return nil
	})
}
