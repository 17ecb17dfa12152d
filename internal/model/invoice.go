package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enum constants. Lifecycle: draft -> outstanding (on first save)
// -> paid (explicit action only). Never moves backward automatically.
const (
	StatusDraft       = "draft"
	StatusOutstanding = "outstanding"
	StatusPaid        = "paid"
)

// TaxType enum constants
const (
	TaxTypeNone     = "None"
	TaxTypeGST      = "GST"
	TaxTypeVAT      = "VAT"
	TaxTypeSalesTax = "Sales Tax"
)

// DiscountType enum constants
const (
	DiscountTypeNone       = "None"
	DiscountTypePercentage = "Percentage"
	DiscountTypeFixed      = "Fixed Amount"
)

const (
	DefaultCurrency = "INR"
	DefaultTerms    = "On Receipt"

	// DateLayout is the wire format for all invoice dates.
	DateLayout = "2006-01-02"
)

// InvoiceItem is one billable line. Rate * Qty contributes to the subtotal.
type InvoiceItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate"`
	Qty         int             `json:"qty"`
}

type Address struct {
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip"`
	Country string `json:"country,omitempty"`
}

// BusinessDetails identifies one party of the invoice. Empty names and
// emails are permitted; the engine performs no validation on these.
type BusinessDetails struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Address        Address `json:"address"`
	Phone          string  `json:"phone,omitempty"`
	BusinessNumber string  `json:"businessNumber,omitempty"`
}

// BankDetails holds payment-reference fields. Each value is stored with its
// display label applied (e.g. "A/C No.: 123456"); the label is part of the
// stored data, kept for compatibility with existing backups. Use
// StripBankLabel / ApplyBankLabel when editing.
type BankDetails struct {
	AccountNumber string `json:"accountNumber,omitempty"`
	CIFNumber     string `json:"cifNumber,omitempty"`
	Branch        string `json:"branch,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
}

// Bank detail display labels, in field order.
const (
	BankLabelAccountNumber = "A/C No.: "
	BankLabelCIFNumber     = "CIF: "
	BankLabelBranch        = "Branch: "
	BankLabelIFSC          = "IFSC: "
)

var bankLabels = []string{BankLabelAccountNumber, BankLabelCIFNumber, BankLabelBranch, BankLabelIFSC}

// StripBankLabel removes a known display label prefix from a stored bank
// detail value, returning just the value for editing.
func StripBankLabel(field string) string {
	for _, label := range bankLabels {
		if strings.HasPrefix(field, label) {
			return field[len(label):]
		}
	}
	return field
}

// ApplyBankLabel prefixes a bank detail value with its display label for
// storage. Already-labelled values are not double-prefixed.
func ApplyBankLabel(label, value string) string {
	return label + StripBankLabel(value)
}

// Tax applies a percentage on top of the subtotal. Rate is only meaningful
// when Type is not TaxTypeNone.
type Tax struct {
	Type string          `json:"type"`
	Rate decimal.Decimal `json:"rate"`
}

// Discount reduces the total. Value is a percentage of the subtotal for
// DiscountTypePercentage, an absolute amount for DiscountTypeFixed.
type Discount struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// PaymentScheduleInfo records the schedule parameters chosen for an invoice.
type PaymentScheduleInfo struct {
	Intervals int    `json:"intervals"`
	StartDate string `json:"startDate"`
	Completed bool   `json:"completed,omitempty"`
}

// Invoice is the central entity. Derived totals (subtotal, tax, discount,
// total) are never stored on it; they are recomputed from Items, Tax and
// Discount on every access.
type Invoice struct {
	ID              string               `json:"id"`
	Number          string               `json:"number"`
	Date            string               `json:"date"`
	DueDate         string               `json:"dueDate,omitempty"`
	Terms           string               `json:"terms,omitempty"`
	From            BusinessDetails      `json:"from"`
	To              BusinessDetails      `json:"to"`
	Items           []InvoiceItem        `json:"items"`
	Notes           string               `json:"notes,omitempty"`
	BankDetails     *BankDetails         `json:"bankDetails,omitempty"`
	Tax             Tax                  `json:"tax"`
	Discount        Discount             `json:"discount"`
	Currency        string               `json:"currency"`
	Logo            string               `json:"logo,omitempty"`
	Signature       string               `json:"signature,omitempty"`
	Status          string               `json:"status"`
	Year            int                  `json:"year"`
	PaymentSchedule *PaymentScheduleInfo `json:"paymentSchedule,omitempty"`
}

// NewInvoiceItem returns a fresh empty line: no description, rate 0, qty 1.
func NewInvoiceItem() InvoiceItem {
	return InvoiceItem{
		ID:  uuid.NewString(),
		Qty: 1,
	}
}

// NewDefaultInvoice builds a fresh draft dated at the supplied time. The
// caller resolves "now" once so the value never drifts within a session.
func NewDefaultInvoice(now time.Time) Invoice {
	return Invoice{
		ID:       uuid.NewString(),
		Number:   "INV0001",
		Date:     now.Format(DateLayout),
		Terms:    DefaultTerms,
		Items:    []InvoiceItem{NewInvoiceItem()},
		Currency: DefaultCurrency,
		Tax:      Tax{Type: TaxTypeNone},
		Discount: Discount{Type: DiscountTypeNone},
		Status:   StatusDraft,
		Year:     now.Year(),
	}
}

// SyncYear re-derives the denormalized Year field from Date. Called at
// creation and on hydration from storage, not on every edit.
func (inv *Invoice) SyncYear() {
	if t, err := time.Parse(DateLayout, inv.Date); err == nil {
		inv.Year = t.Year()
	}
}

// Clone returns a deep copy so callers cannot mutate store-owned state
// through shared item slices or bank detail pointers.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.Items = make([]InvoiceItem, len(inv.Items))
	copy(out.Items, inv.Items)
	if inv.BankDetails != nil {
		bd := *inv.BankDetails
		out.BankDetails = &bd
	}
	if inv.PaymentSchedule != nil {
		ps := *inv.PaymentSchedule
		out.PaymentSchedule = &ps
	}
	return out
}
