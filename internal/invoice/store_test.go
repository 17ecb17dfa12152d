package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicesimple/internal/model"
	"invoicesimple/internal/storage"
)

// memPersistence is an in-memory mirror for tests.
type memPersistence struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func newMemPersistence() *memPersistence {
	return &memPersistence{data: map[string][]byte{}}
}

func (m *memPersistence) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memPersistence) Put(_ context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("disk full")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

// stubDocuments records calls and returns a canned result.
type stubDocuments struct {
	fileName string
	err      error
	calls    int
}

func (d *stubDocuments) Generate(_ context.Context, _ model.Invoice, _ Totals, _ model.InvoiceSettings) (string, error) {
	d.calls++
	return d.fileName, d.err
}

// stubMailer records the last send.
type stubMailer struct {
	result     EmailResult
	calls      int
	recipient  string
	attachment string
}

func (m *stubMailer) Send(_ context.Context, _ model.Invoice, recipient, attachment string) EmailResult {
	m.calls++
	m.recipient = recipient
	m.attachment = attachment
	return m.result
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*Store, *memPersistence, *stubDocuments, *stubMailer) {
	t.Helper()
	persistence := newMemPersistence()
	documents := &stubDocuments{fileName: "INV0001 - May.pdf"}
	mailer := &stubMailer{result: EmailResult{Success: true, Message: "sent"}}
	store := NewStore(persistence, documents, mailer, nil, nil, fixedNow)
	return store, persistence, documents, mailer
}

func TestNewStoreStartsWithDefaults(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	assert.Empty(t, store.Invoices())
	assert.Equal(t, ViewDashboard, store.ActiveView())
	assert.Equal(t, FilterAll, store.Filter())
	assert.Equal(t, Sort{Field: SortFieldDate, Direction: SortDesc}, store.Sort())

	draft := store.CurrentInvoice()
	assert.Equal(t, model.StatusDraft, draft.Status)
	assert.Equal(t, "2024-05-20", draft.Date)
	assert.Equal(t, 2024, draft.Year)
	assert.Len(t, draft.Items, 1)
	assert.Equal(t, model.DefaultCurrency, draft.Currency)
}

func TestNewStoreHydratesFromPersistence(t *testing.T) {
	persistence := newMemPersistence()
	ctx := context.Background()

	saved := model.NewDefaultInvoice(fixedNow())
	saved.Status = model.StatusOutstanding
	require.NoError(t, persistence.Put(ctx, storage.KeyInvoices, []model.Invoice{saved}))

	draft := model.NewDefaultInvoice(fixedNow())
	draft.Date = "2023-11-02"
	draft.Year = 2024 // stale denormalized year
	require.NoError(t, persistence.Put(ctx, storage.KeyCurrentInvoice, draft))

	store := NewStore(persistence, &stubDocuments{}, &stubMailer{}, nil, nil, fixedNow)

	assert.Len(t, store.Invoices(), 1)
	got := store.CurrentInvoice()
	assert.Equal(t, "2023-11-02", got.Date)
	assert.Equal(t, 2023, got.Year, "year resynced from date on hydration")
}

func TestUpdateInvoiceShallowMerge(t *testing.T) {
	store, persistence, _, _ := newTestStore(t)

	number := "CUSTOM-7"
	notes := "thanks"
	store.UpdateInvoice(InvoiceUpdate{Number: &number, Notes: &notes})

	draft := store.CurrentInvoice()
	assert.Equal(t, "CUSTOM-7", draft.Number)
	assert.Equal(t, "thanks", draft.Notes)
	assert.Equal(t, "2024-05-20", draft.Date, "untouched fields survive the merge")

	// Mirrored to persistence.
	var stored model.Invoice
	found, err := persistence.Get(context.Background(), storage.KeyCurrentInvoice, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "CUSTOM-7", stored.Number)
}

func TestUpdateInvoiceAllowsEmptyValues(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	empty := ""
	store.UpdateInvoice(InvoiceUpdate{From: &model.BusinessDetails{}, Number: &empty})

	draft := store.CurrentInvoice()
	assert.Empty(t, draft.Number)
	assert.Empty(t, draft.From.Name)
}

func TestUpdateInvoiceItem(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	itemID := store.CurrentInvoice().Items[0].ID

	desc := "consulting"
	rate := decimal.NewFromInt(150)
	qty := 3
	store.UpdateInvoiceItem(itemID, ItemUpdate{Description: &desc, Rate: &rate, Qty: &qty})

	item := store.CurrentInvoice().Items[0]
	assert.Equal(t, "consulting", item.Description)
	assert.True(t, item.Rate.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 3, item.Qty)
}

func TestUpdateInvoiceItemUnknownIDIsNoOp(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	before := store.CurrentInvoice()

	desc := "ghost"
	store.UpdateInvoiceItem("nope", ItemUpdate{Description: &desc})

	assert.Equal(t, before, store.CurrentInvoice())
}

func TestAddInvoiceItem(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	store.AddInvoiceItem()

	items := store.CurrentInvoice().Items
	require.Len(t, items, 2)
	assert.Empty(t, items[1].Description)
	assert.True(t, items[1].Rate.IsZero())
	assert.Equal(t, 1, items[1].Qty)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestRemoveLastItemIsNoOp(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	itemID := store.CurrentInvoice().Items[0].ID

	store.RemoveInvoiceItem(itemID)

	assert.Len(t, store.CurrentInvoice().Items, 1)
}

func TestRemoveInvoiceItem(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.AddInvoiceItem()
	first := store.CurrentInvoice().Items[0].ID

	store.RemoveInvoiceItem(first)

	items := store.CurrentInvoice().Items
	require.Len(t, items, 1)
	assert.NotEqual(t, first, items[0].ID)
}

func TestCreateNewInvoiceNumbersSequentially(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	store.CreateNewInvoice()
	assert.Equal(t, "INV0001", store.CurrentInvoice().Number)
	assert.Equal(t, ViewEdit, store.ActiveView())

	store.SaveInvoice()
	store.CreateNewInvoice()
	assert.Equal(t, "INV0002", store.CurrentInvoice().Number)
}

func TestSaveInvoiceForcesOutstandingOnInsert(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	draftID := store.CurrentInvoice().ID

	store.SaveInvoice()

	invoices := store.Invoices()
	require.Len(t, invoices, 1)
	assert.Equal(t, draftID, invoices[0].ID)
	assert.Equal(t, model.StatusOutstanding, invoices[0].Status)
	assert.Equal(t, ViewDashboard, store.ActiveView())
}

func TestSaveInvoiceUpsertsInPlace(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.SaveInvoice()

	notes := "updated"
	store.UpdateInvoice(InvoiceUpdate{Notes: &notes})
	store.SaveInvoice()

	invoices := store.Invoices()
	require.Len(t, invoices, 1, "no duplicate entry on re-save")
	assert.Equal(t, "updated", invoices[0].Notes)
}

func TestSaveInvoicePreservesPositionOnUpdate(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	store.SaveInvoice()
	firstID := store.Invoices()[0].ID
	store.CreateNewInvoice()
	store.SaveInvoice()

	store.SelectInvoice(firstID)
	notes := "edited first"
	store.UpdateInvoice(InvoiceUpdate{Notes: &notes})
	store.SaveInvoice()

	invoices := store.Invoices()
	require.Len(t, invoices, 2)
	assert.Equal(t, firstID, invoices[0].ID, "updated entry keeps its position")
	assert.Equal(t, "edited first", invoices[0].Notes)
}

func TestSelectInvoice(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.SaveInvoice()
	savedID := store.Invoices()[0].ID
	store.CreateNewInvoice()

	store.SelectInvoice(savedID)

	assert.Equal(t, savedID, store.CurrentInvoice().ID)
	assert.Equal(t, ViewEdit, store.ActiveView())
}

func TestSelectInvoiceMissingIDIsNoOp(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.SaveInvoice()
	store.SetActiveView(ViewDashboard)
	before := store.CurrentInvoice()

	store.SelectInvoice("missing")

	assert.Equal(t, before.ID, store.CurrentInvoice().ID)
	assert.Equal(t, ViewDashboard, store.ActiveView())
}

func TestDeleteInvoiceResetsMatchingDraft(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.SaveInvoice()
	draftID := store.CurrentInvoice().ID

	store.DeleteInvoice(draftID)

	assert.Empty(t, store.Invoices())
	assert.NotEqual(t, draftID, store.CurrentInvoice().ID, "draft reset to a fresh default")
	assert.Equal(t, ViewDashboard, store.ActiveView())
}

func TestDeleteInvoiceKeepsUnrelatedDraft(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.SaveInvoice()
	savedID := store.Invoices()[0].ID
	store.CreateNewInvoice()
	draftID := store.CurrentInvoice().ID

	store.DeleteInvoice(savedID)

	assert.Empty(t, store.Invoices())
	assert.Equal(t, draftID, store.CurrentInvoice().ID)
}

func TestMarkAsPaid(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.SaveInvoice()
	store.CreateNewInvoice()
	store.SaveInvoice()

	invoices := store.Invoices()
	target := invoices[0].ID

	store.MarkAsPaid(target)

	after := store.Invoices()
	assert.Equal(t, model.StatusPaid, after[0].Status)
	assert.Equal(t, model.StatusOutstanding, after[1].Status, "other invoices untouched")
}

func TestMarkAsPaidLeavesDraftAlone(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.SaveInvoice()
	draftID := store.CurrentInvoice().ID

	store.MarkAsPaid(draftID)

	assert.Equal(t, model.StatusDraft, store.CurrentInvoice().Status)
	assert.Equal(t, model.StatusPaid, store.Invoices()[0].Status)
}

func TestUpdateSettings(t *testing.T) {
	store, persistence, _, _ := newTestStore(t)

	color := model.TemplateColorNavy
	reviews := true
	store.UpdateSettings(SettingsUpdate{TemplateColor: &color, RequestReviews: &reviews})

	settings := store.Settings()
	assert.Equal(t, model.TemplateColorNavy, settings.TemplateColor)
	assert.True(t, settings.RequestReviews)

	var stored model.InvoiceSettings
	found, err := persistence.Get(context.Background(), storage.KeySettings, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.TemplateColorNavy, stored.TemplateColor)
}

func TestPersistenceFailureDoesNotBlockMutation(t *testing.T) {
	store, persistence, _, _ := newTestStore(t)
	persistence.fail = true

	notes := "still applied"
	store.UpdateInvoice(InvoiceUpdate{Notes: &notes})

	assert.Equal(t, "still applied", store.CurrentInvoice().Notes)
}

func TestGeneratePDFSuccess(t *testing.T) {
	store, _, documents, _ := newTestStore(t)

	fileName, err := store.GeneratePDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV0001 - May.pdf", fileName)
	assert.Equal(t, 1, documents.calls)
	assert.False(t, store.IsProcessing())
	assert.Contains(t, store.StatusMessage(), "PDF generated successfully")
}

func TestGeneratePDFFailureClearsProcessing(t *testing.T) {
	store, _, documents, _ := newTestStore(t)
	documents.fileName = ""
	documents.err = fmt.Errorf("renderer unavailable")

	fileName, err := store.GeneratePDF(context.Background())
	assert.Error(t, err)
	assert.Empty(t, fileName)
	assert.False(t, store.IsProcessing())
	assert.Contains(t, store.StatusMessage(), "renderer unavailable")
}

func TestEmailInvoiceSuccess(t *testing.T) {
	store, _, _, mailer := newTestStore(t)

	ok, message := store.EmailInvoice(context.Background(), "client@example.com")
	assert.True(t, ok)
	assert.Equal(t, "sent", message)
	assert.Equal(t, "client@example.com", mailer.recipient)
	assert.Equal(t, "INV0001 - May.pdf", mailer.attachment)
	assert.False(t, store.IsProcessing())
}

func TestEmailInvoiceAbortsWhenPDFFails(t *testing.T) {
	store, _, documents, mailer := newTestStore(t)
	documents.err = fmt.Errorf("renderer unavailable")

	ok, message := store.EmailInvoice(context.Background(), "client@example.com")
	assert.False(t, ok)
	assert.Contains(t, message, "PDF generation failed")
	assert.Equal(t, 0, mailer.calls, "send skipped entirely")
	assert.False(t, store.IsProcessing())
}

func TestEmailInvoiceReportsSenderFailure(t *testing.T) {
	store, _, _, mailer := newTestStore(t)
	mailer.result = EmailResult{Success: false, Message: "Invalid email address format"}

	ok, message := store.EmailInvoice(context.Background(), "not-an-email")
	assert.False(t, ok)
	assert.Equal(t, "Invalid email address format", message)
	assert.Equal(t, message, store.StatusMessage())
}

func TestCreateSchedule(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	itemID := store.CurrentInvoice().Items[0].ID
	rate := decimal.NewFromInt(100)
	qty := 3
	store.UpdateInvoiceItem(itemID, ItemUpdate{Rate: &rate, Qty: &qty})

	require.NoError(t, store.CreateSchedule(3, "2024-01-15"))

	installments := store.PaymentSchedule()
	require.Len(t, installments, 3)
	assert.True(t, installments[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "2024-01-15", installments[0].DueDate)
	assert.Equal(t, "2024-03-15", installments[2].DueDate)
}

func TestCreateScheduleDefaultsStartDateToNow(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	require.NoError(t, store.CreateSchedule(2, ""))

	installments := store.PaymentSchedule()
	require.Len(t, installments, 2)
	assert.Equal(t, "2024-05-20", installments[0].DueDate)
	assert.Equal(t, "2024-06-20", installments[1].DueDate)
}

func TestCreateScheduleOverwritesPrevious(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	require.NoError(t, store.CreateSchedule(3, "2024-01-15"))
	require.NoError(t, store.CreateSchedule(2, "2024-02-01"))

	assert.Len(t, store.PaymentSchedule(), 2)
}

func TestCreateScheduleRejectsBadInput(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	assert.Error(t, store.CreateSchedule(0, "2024-01-15"))
	assert.Error(t, store.CreateSchedule(2, "01/15/2024"))
}

func TestCreateScheduleFailuresSetStatusMessage(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	require.Error(t, store.CreateSchedule(0, "2024-01-15"))
	assert.Contains(t, store.StatusMessage(), "Could not create payment schedule")

	// Both failure paths surface the same way.
	require.Error(t, store.CreateSchedule(2, "01/15/2024"))
	assert.Contains(t, store.StatusMessage(), "Could not create payment schedule")
	assert.Contains(t, store.StatusMessage(), "invalid start date")
}
