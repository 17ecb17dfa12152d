package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicesimple/internal/model"
)

func seedInvoice(t *testing.T, store *Store, number, client, date, status string, amount int64) string {
	t.Helper()
	store.CreateNewInvoice()
	store.UpdateInvoice(InvoiceUpdate{
		Number: &number,
		Date:   &date,
		To:     &model.BusinessDetails{Name: client},
	})
	itemID := store.CurrentInvoice().Items[0].ID
	rate := decimal.NewFromInt(amount)
	qty := 1
	store.UpdateInvoiceItem(itemID, ItemUpdate{Rate: &rate, Qty: &qty})
	store.SaveInvoice()

	id := ""
	for _, inv := range store.Invoices() {
		if inv.Number == number {
			id = inv.ID
		}
	}
	require.NotEmpty(t, id)
	if status == model.StatusPaid {
		store.MarkAsPaid(id)
	}
	return id
}

func numbers(invoices []model.Invoice) []string {
	out := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.Number)
	}
	return out
}

func newQueryStore(t *testing.T) *Store {
	t.Helper()
	store, _, _, _ := newTestStore(t)
	seedInvoice(t, store, "A-1", "Acme", "2024-03-01", model.StatusOutstanding, 300)
	seedInvoice(t, store, "B-2", "Bolt", "2024-01-10", model.StatusPaid, 100)
	seedInvoice(t, store, "C-3", "acme corp", "2024-02-20", model.StatusOutstanding, 200)
	return store
}

func TestFilteredByStatus(t *testing.T) {
	store := newQueryStore(t)
	store.SetFilter(FilterPaid)
	store.SetSort(Sort{Field: SortFieldDate, Direction: SortAsc})

	got := store.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "B-2", got[0].Number)
}

func TestFilteredAllPreservesOrderOnTies(t *testing.T) {
	store := newQueryStore(t)
	store.SetFilter(FilterAll)
	// Same-date invoices must keep insertion order under a stable sort.
	store.SetSort(Sort{Field: SortFieldAmount, Direction: SortAsc})
	seedInvoice(t, store, "D-4", "Dup", "2024-04-01", model.StatusOutstanding, 200)

	got := store.Filtered()
	require.Len(t, got, 4)
	assert.Equal(t, []string{"B-2", "C-3", "D-4", "A-1"}, numbers(got))
}

func TestSearchMatchesClientNameCaseInsensitive(t *testing.T) {
	store := newQueryStore(t)
	store.SetSearchTerm("ACME")
	store.SetSort(Sort{Field: SortFieldDate, Direction: SortAsc})

	got := store.Filtered()
	assert.Equal(t, []string{"C-3", "A-1"}, numbers(got))
}

func TestSearchMatchesInvoiceNumber(t *testing.T) {
	store := newQueryStore(t)
	store.SetSearchTerm("b-2")

	got := store.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "B-2", got[0].Number)
}

func TestSortByDateDesc(t *testing.T) {
	store := newQueryStore(t)
	store.SetSort(Sort{Field: SortFieldDate, Direction: SortDesc})

	assert.Equal(t, []string{"A-1", "C-3", "B-2"}, numbers(store.Filtered()))
}

func TestSortByAmountAsc(t *testing.T) {
	store := newQueryStore(t)
	store.SetSort(Sort{Field: SortFieldAmount, Direction: SortAsc})

	assert.Equal(t, []string{"B-2", "C-3", "A-1"}, numbers(store.Filtered()))
}

func TestSortByClient(t *testing.T) {
	store := newQueryStore(t)
	store.SetSort(Sort{Field: SortFieldClient, Direction: SortAsc})

	// Case-insensitive: "Acme" and "acme corp" group together.
	assert.Equal(t, []string{"A-1", "C-3", "B-2"}, numbers(store.Filtered()))
}

func TestStats(t *testing.T) {
	store := newQueryStore(t)

	stats := store.Stats()
	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 2, stats.OutstandingCount)
	assert.Equal(t, 1, stats.PaidCount)
	assert.True(t, stats.OutstandingAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, stats.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, stats.TotalAmount.Equal(decimal.NewFromInt(600)))
}
