// Package invoice owns the single source of truth for invoice data: the
// persisted collection, the in-progress draft, settings and workspace state.
// Presentation layers never mutate these directly; they go through Store
// operations, and every state change is mirrored to persistence.
package invoice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"invoicesimple/internal/calc"
	"invoicesimple/internal/model"
	"invoicesimple/internal/schedule"
	"invoicesimple/internal/storage"
)

// View enum constants for the active workspace view.
const (
	ViewDashboard = "dashboard"
	ViewEdit      = "edit"
	ViewPreview   = "preview"
	ViewHistory   = "history"
)

// Filter enum constants for the history listing.
const (
	FilterAll         = "all"
	FilterOutstanding = "outstanding"
	FilterPaid        = "paid"
)

// Sort field and direction constants.
const (
	SortFieldDate   = "date"
	SortFieldNumber = "number"
	SortFieldClient = "client"
	SortFieldAmount = "amount"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Sort describes the ordering of the history listing.
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Totals is the derived-value snapshot handed to collaborators. Always
// recomputed from the draft, never stored.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Persistence is the durable mirror the store writes through. Write failures
// are logged, never surfaced; in-memory state stays authoritative.
type Persistence interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Put(ctx context.Context, key string, value interface{}) error
}

// DocumentGenerator renders a finalized invoice snapshot into a document
// file and returns its name.
type DocumentGenerator interface {
	Generate(ctx context.Context, inv model.Invoice, totals Totals, settings model.InvoiceSettings) (string, error)
}

// EmailResult is the outcome of a delivery attempt.
type EmailResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EmailSender delivers an invoice with an attachment reference.
type EmailSender interface {
	Send(ctx context.Context, inv model.Invoice, recipient, attachment string) EmailResult
}

// Notifier pushes store status events to interested presentation clients.
type Notifier interface {
	Publish(event interface{})
}

// StatusEvent is broadcast whenever the status message or busy flag changes.
type StatusEvent struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Processing bool   `json:"processing"`
}

// Store is the core state machine. All operations are safe for concurrent
// use; mutations run to completion under one lock. The two async operations
// (GeneratePDF, EmailInvoice) release the lock while a collaborator runs,
// and IsProcessing is a cooperative busy flag only: overlapping triggers are
// not guarded against, both eventually settle the flag and the last writer
// wins the status message.
type Store struct {
	mu         sync.Mutex
	invoices   []model.Invoice
	current    model.Invoice
	settings   model.InvoiceSettings
	activeView string
	filter     string
	sort       Sort
	searchTerm string
	schedule   []schedule.Installment
	processing bool
	statusMsg  string

	persistence Persistence
	documents   DocumentGenerator
	mailer      EmailSender
	notifier    Notifier
	logger      *zap.Logger
	now         func() time.Time
}

// NewStore constructs the state owner and hydrates it from persistence.
// notifier may be nil; now defaults to time.Now.
func NewStore(
	persistence Persistence,
	documents DocumentGenerator,
	mailer EmailSender,
	notifier Notifier,
	logger *zap.Logger,
	now func() time.Time,
) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	s := &Store{
		persistence: persistence,
		documents:   documents,
		mailer:      mailer,
		notifier:    notifier,
		logger:      logger,
		now:         now,
	}
	s.mu.Lock()
	s.loadLocked()
	s.mu.Unlock()
	return s
}

// Reload rehydrates invoices, draft and settings from persistence. Called
// after a backup import or clear so the session picks up the new dataset.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
}

func (s *Store) loadLocked() {
	ctx := context.Background()

	s.invoices = nil
	if found, err := s.persistence.Get(ctx, storage.KeyInvoices, &s.invoices); err != nil {
		s.logger.Error("failed to load invoices, starting empty", zap.Error(err))
	} else if !found {
		s.invoices = []model.Invoice{}
	}
	if s.invoices == nil {
		s.invoices = []model.Invoice{}
	}

	var draft model.Invoice
	found, err := s.persistence.Get(ctx, storage.KeyCurrentInvoice, &draft)
	if err != nil {
		s.logger.Error("failed to load draft, starting fresh", zap.Error(err))
		found = false
	}
	if found {
		draft.SyncYear()
		s.current = draft
	} else {
		s.current = model.NewDefaultInvoice(s.now())
	}

	settings := model.DefaultSettings()
	if _, err := s.persistence.Get(ctx, storage.KeySettings, &settings); err != nil {
		s.logger.Error("failed to load settings, using defaults", zap.Error(err))
		settings = model.DefaultSettings()
	}
	s.settings = settings

	s.activeView = ViewDashboard
	s.filter = FilterAll
	s.sort = Sort{Field: SortFieldDate, Direction: SortDesc}
	s.searchTerm = ""
	s.schedule = nil
}

// persistLocked mirrors one record. Failures are logged and swallowed; the
// in-memory state remains authoritative for the session.
func (s *Store) persistLocked(key string, value interface{}) {
	if err := s.persistence.Put(context.Background(), key, value); err != nil {
		s.logger.Error("failed to persist state", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) setStatusLocked(message string) {
	s.statusMsg = message
	if s.notifier != nil {
		s.notifier.Publish(StatusEvent{Type: "status", Message: message, Processing: s.processing})
	}
}

// --- Patch types ---

// InvoiceUpdate is a shallow merge into the draft. Nil fields are left
// untouched; no validation is performed by design.
type InvoiceUpdate struct {
	Number          *string                    `json:"number"`
	Date            *string                    `json:"date"`
	DueDate         *string                    `json:"dueDate"`
	Terms           *string                    `json:"terms"`
	From            *model.BusinessDetails     `json:"from"`
	To              *model.BusinessDetails     `json:"to"`
	Notes           *string                    `json:"notes"`
	BankDetails     *model.BankDetails         `json:"bankDetails"`
	Tax             *model.Tax                 `json:"tax"`
	Discount        *model.Discount            `json:"discount"`
	Currency        *string                    `json:"currency"`
	Logo            *string                    `json:"logo"`
	Signature       *string                    `json:"signature"`
	PaymentSchedule *model.PaymentScheduleInfo `json:"paymentSchedule"`
}

type ItemUpdate struct {
	Description *string          `json:"description"`
	Rate        *decimal.Decimal `json:"rate"`
	Qty         *int             `json:"qty"`
}

type SettingsUpdate struct {
	TemplateColor  *string `json:"templateColor"`
	CustomColor    *string `json:"customColor"`
	RequestReviews *bool   `json:"requestReviews"`
	ReviewLink     *string `json:"reviewLink"`
}

// --- Draft operations ---

// UpdateInvoice shallow-merges the patch into the current draft.
func (s *Store) UpdateInvoice(update InvoiceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Number != nil {
		s.current.Number = *update.Number
	}
	if update.Date != nil {
		s.current.Date = *update.Date
	}
	if update.DueDate != nil {
		s.current.DueDate = *update.DueDate
	}
	if update.Terms != nil {
		s.current.Terms = *update.Terms
	}
	if update.From != nil {
		s.current.From = *update.From
	}
	if update.To != nil {
		s.current.To = *update.To
	}
	if update.Notes != nil {
		s.current.Notes = *update.Notes
	}
	if update.BankDetails != nil {
		bd := *update.BankDetails
		s.current.BankDetails = &bd
	}
	if update.Tax != nil {
		s.current.Tax = *update.Tax
	}
	if update.Discount != nil {
		s.current.Discount = *update.Discount
	}
	if update.Currency != nil {
		s.current.Currency = *update.Currency
	}
	if update.Logo != nil {
		s.current.Logo = *update.Logo
	}
	if update.Signature != nil {
		s.current.Signature = *update.Signature
	}
	if update.PaymentSchedule != nil {
		ps := *update.PaymentSchedule
		s.current.PaymentSchedule = &ps
	}

	s.persistLocked(storage.KeyCurrentInvoice, s.current)
}

// UpdateInvoiceItem merges the patch into the matching item. Unknown ids are
// a silent no-op.
func (s *Store) UpdateInvoiceItem(id string, update ItemUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.current.Items {
		if s.current.Items[i].ID != id {
			continue
		}
		if update.Description != nil {
			s.current.Items[i].Description = *update.Description
		}
		if update.Rate != nil {
			s.current.Items[i].Rate = *update.Rate
		}
		if update.Qty != nil {
			s.current.Items[i].Qty = *update.Qty
		}
		s.persistLocked(storage.KeyCurrentInvoice, s.current)
		return
	}
}

// AddInvoiceItem appends a fresh empty line to the draft.
func (s *Store) AddInvoiceItem() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Items = append(s.current.Items, model.NewInvoiceItem())
	s.persistLocked(storage.KeyCurrentInvoice, s.current)
}

// RemoveInvoiceItem removes the matching item unless it is the last one;
// an invoice always keeps at least one line.
func (s *Store) RemoveInvoiceItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.current.Items) <= 1 {
		return
	}
	items := s.current.Items[:0]
	for _, item := range s.current.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	s.current.Items = items
	s.persistLocked(storage.KeyCurrentInvoice, s.current)
}

// --- Lifecycle operations ---

// CreateNewInvoice replaces the draft with a fresh one. The number is a
// zero-padded sequence one past the collection size: a display convenience,
// not a uniqueness guarantee.
func (s *Store) CreateNewInvoice() {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := model.NewDefaultInvoice(s.now())
	draft.Number = fmt.Sprintf("INV%04d", len(s.invoices)+1)
	s.current = draft
	s.activeView = ViewEdit
	s.persistLocked(storage.KeyCurrentInvoice, s.current)
}

// SelectInvoice loads a saved invoice as the draft and switches to the edit
// view. A missing id is a silent no-op.
func (s *Store) SelectInvoice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invoices {
		if inv.ID == id {
			s.current = inv.Clone()
			s.activeView = ViewEdit
			s.persistLocked(storage.KeyCurrentInvoice, s.current)
			return
		}
	}
}

// SaveInvoice upserts the draft into the collection, keyed by id. A new
// entry is appended with status forced to outstanding regardless of its
// prior status; an existing entry is replaced in place. Switches to the
// dashboard view.
func (s *Store) SaveInvoice() {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.invoices {
		if s.invoices[i].ID == s.current.ID {
			s.invoices[i] = s.current.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		saved := s.current.Clone()
		saved.Status = model.StatusOutstanding
		s.invoices = append(s.invoices, saved)
	}

	s.activeView = ViewDashboard
	s.persistLocked(storage.KeyInvoices, s.invoices)
}

// DeleteInvoice removes a saved invoice. When the deleted id matches the
// draft, the draft resets to a fresh default and the view returns to the
// dashboard. Missing ids are a silent no-op on the collection.
func (s *Store) DeleteInvoice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoices := s.invoices[:0]
	for _, inv := range s.invoices {
		if inv.ID != id {
			invoices = append(invoices, inv)
		}
	}
	s.invoices = invoices
	s.persistLocked(storage.KeyInvoices, s.invoices)

	if s.current.ID == id {
		s.current = model.NewDefaultInvoice(s.now())
		s.activeView = ViewDashboard
		s.persistLocked(storage.KeyCurrentInvoice, s.current)
	}
}

// MarkAsPaid sets the persisted invoice's status to paid. The draft is left
// alone even when it holds the same id; it keeps its loaded status until
// re-selected.
func (s *Store) MarkAsPaid(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.invoices {
		if s.invoices[i].ID == id {
			s.invoices[i].Status = model.StatusPaid
			s.persistLocked(storage.KeyInvoices, s.invoices)
			return
		}
	}
}

// UpdateSettings shallow-merges the patch into the settings record.
func (s *Store) UpdateSettings(update SettingsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.TemplateColor != nil {
		s.settings.TemplateColor = *update.TemplateColor
	}
	if update.CustomColor != nil {
		s.settings.CustomColor = *update.CustomColor
	}
	if update.RequestReviews != nil {
		s.settings.RequestReviews = *update.RequestReviews
	}
	if update.ReviewLink != nil {
		s.settings.ReviewLink = *update.ReviewLink
	}
	s.persistLocked(storage.KeySettings, s.settings)
}

// --- Workspace state ---

func (s *Store) SetActiveView(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeView = view
}

func (s *Store) SetFilter(filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
}

func (s *Store) SetSort(sort Sort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = sort
}

func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

// --- Accessors ---

// CurrentInvoice returns a copy of the draft.
func (s *Store) CurrentInvoice() model.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Invoices returns a copy of the persisted collection in insertion order.
func (s *Store) Invoices() []model.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneInvoices(s.invoices)
}

func (s *Store) Settings() model.InvoiceSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) ActiveView() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeView
}

func (s *Store) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Store) Sort() Sort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

func (s *Store) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

// PaymentSchedule returns the last generated schedule. Ephemeral: not
// persisted, overwritten by each CreateSchedule call.
func (s *Store) PaymentSchedule() []schedule.Installment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schedule.Installment, len(s.schedule))
	copy(out, s.schedule)
	return out
}

func (s *Store) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

func (s *Store) StatusMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusMsg
}

// Subtotal recomputes the draft's subtotal.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calc.Subtotal(s.current.Items)
}

// Total recomputes the draft's grand total.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calc.Total(s.current.Items, s.current.Tax, s.current.Discount)
}

// Totals recomputes the full derived-value snapshot for the draft.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

func (s *Store) totalsLocked() Totals {
	subtotal := calc.Subtotal(s.current.Items)
	tax := calc.TaxAmount(subtotal, s.current.Tax)
	discount := calc.DiscountAmount(subtotal, s.current.Discount)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

func cloneInvoices(invoices []model.Invoice) []model.Invoice {
	out := make([]model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.Clone())
	}
	return out
}
