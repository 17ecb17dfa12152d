// Package schedule generates payment installment plans. The generator is
// pure: the caller resolves "today" before calling so results are
// reproducible.
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Installment status constants. The generator only ever emits pending;
// transitions are owned elsewhere.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// Installment is one entry of a payment schedule.
type Installment struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoiceId"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   string          `json:"dueDate"`
	Status    string          `json:"status"`
}

// Params describes the schedule to generate.
type Params struct {
	InvoiceID        string
	InvoiceAmount    decimal.Decimal
	NumberOfPayments int
	StartDate        time.Time
}

const fallbackInvoiceID = "temp-id"

// Create produces NumberOfPayments installments of equal amount, due one
// calendar month apart starting at StartDate. The split is a plain decimal
// division with no remainder redistribution; month stepping follows
// time.AddDate normalization (Jan 31 + 1 month rolls into March).
func Create(params Params) ([]Installment, error) {
	if params.NumberOfPayments < 1 {
		return nil, fmt.Errorf("number of payments must be at least 1, got %d", params.NumberOfPayments)
	}

	invoiceID := params.InvoiceID
	if invoiceID == "" {
		invoiceID = fallbackInvoiceID
	}

	amount := params.InvoiceAmount.Div(decimal.NewFromInt(int64(params.NumberOfPayments)))

	installments := make([]Installment, 0, params.NumberOfPayments)
	for i := 0; i < params.NumberOfPayments; i++ {
		installments = append(installments, Installment{
			ID:        fmt.Sprintf("%s-payment-%d", invoiceID, i+1),
			InvoiceID: invoiceID,
			Amount:    amount,
			DueDate:   params.StartDate.AddDate(0, i, 0).Format("2006-01-02"),
			Status:    StatusPending,
		})
	}

	return installments, nil
}

// FormatForDisplay renders the schedule as one line per installment, e.g.
// "Payment 1: 100 INR due on 2024-01-15".
func FormatForDisplay(installments []Installment, currency string) string {
	out := ""
	for i, inst := range installments {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("Payment %d: %s %s due on %s", i+1, inst.Amount.StringFixed(2), currency, inst.DueDate)
	}
	return out
}
