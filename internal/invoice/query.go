package invoice

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"invoicesimple/internal/calc"
	"invoicesimple/internal/model"
)

// Filtered returns the ordered subset of the collection matching the current
// filter, search term and sort. Computed on demand, never stored. The sort
// is stable: ties keep insertion order.
func (s *Store) Filtered() []model.Invoice {
	s.mu.Lock()
	filter := s.filter
	term := s.searchTerm
	order := s.sort
	invoices := cloneInvoices(s.invoices)
	s.mu.Unlock()

	result := invoices[:0]
	for _, inv := range invoices {
		if matchesFilter(inv, filter) && matchesSearch(inv, term) {
			result = append(result, inv)
		}
	}

	sortInvoices(result, order)
	return result
}

func matchesFilter(inv model.Invoice, filter string) bool {
	return filter == "" || filter == FilterAll || inv.Status == filter
}

// matchesSearch is a case-insensitive substring match against the billed-to
// name or the invoice number.
func matchesSearch(inv model.Invoice, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(inv.To.Name), term) ||
		strings.Contains(strings.ToLower(inv.Number), term)
}

func sortInvoices(invoices []model.Invoice, order Sort) {
	desc := order.Direction == SortDesc

	var less func(a, b model.Invoice) bool
	switch order.Field {
	case SortFieldNumber:
		less = func(a, b model.Invoice) bool { return a.Number < b.Number }
	case SortFieldClient:
		less = func(a, b model.Invoice) bool {
			return strings.ToLower(a.To.Name) < strings.ToLower(b.To.Name)
		}
	case SortFieldAmount:
		less = func(a, b model.Invoice) bool {
			return calc.Total(a.Items, a.Tax, a.Discount).LessThan(calc.Total(b.Items, b.Tax, b.Discount))
		}
	default:
		// ISO dates compare correctly as strings.
		less = func(a, b model.Invoice) bool { return a.Date < b.Date }
	}

	sort.SliceStable(invoices, func(i, j int) bool {
		if desc {
			return less(invoices[j], invoices[i])
		}
		return less(invoices[i], invoices[j])
	})
}

// DashboardStats aggregates the collection for the dashboard widgets.
type DashboardStats struct {
	TotalCount        int             `json:"totalCount"`
	OutstandingCount  int             `json:"outstandingCount"`
	PaidCount         int             `json:"paidCount"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
}

// Stats recomputes dashboard aggregates from the persisted collection.
func (s *Store) Stats() DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := DashboardStats{
		OutstandingAmount: decimal.Zero,
		PaidAmount:        decimal.Zero,
		TotalAmount:       decimal.Zero,
	}
	for _, inv := range s.invoices {
		total := calc.Total(inv.Items, inv.Tax, inv.Discount)
		stats.TotalCount++
		stats.TotalAmount = stats.TotalAmount.Add(total)
		switch inv.Status {
		case model.StatusOutstanding:
			stats.OutstandingCount++
			stats.OutstandingAmount = stats.OutstandingAmount.Add(total)
		case model.StatusPaid:
			stats.PaidCount++
			stats.PaidAmount = stats.PaidAmount.Add(total)
		}
	}
	return stats
}
