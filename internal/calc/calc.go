// Package calc holds the pure derived-value calculations for an invoice.
// Nothing here performs I/O or rounding; formatting is the caller's concern.
package calc

import (
	"github.com/shopspring/decimal"

	"invoicesimple/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Subtotal sums rate * qty over all items. An empty slice yields zero.
func Subtotal(items []model.InvoiceItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Rate.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return subtotal
}

// TaxAmount returns subtotal * rate/100, or zero when the tax type is None
// or the rate is unset.
func TaxAmount(subtotal decimal.Decimal, tax model.Tax) decimal.Decimal {
	if tax.Type == model.TaxTypeNone || tax.Rate.IsZero() {
		return decimal.Zero
	}
	return subtotal.Mul(tax.Rate).Div(hundred)
}

// DiscountAmount returns the amount removed from the total. A fixed discount
// is not capped at the subtotal; a negative total is accepted, not guarded.
func DiscountAmount(subtotal decimal.Decimal, discount model.Discount) decimal.Decimal {
	if discount.Type == model.DiscountTypeNone || discount.Value.IsZero() {
		return decimal.Zero
	}
	switch discount.Type {
	case model.DiscountTypePercentage:
		return subtotal.Mul(discount.Value).Div(hundred)
	case model.DiscountTypeFixed:
		return discount.Value
	}
	return decimal.Zero
}

// Total is subtotal + tax - discount.
func Total(items []model.InvoiceItem, tax model.Tax, discount model.Discount) decimal.Decimal {
	subtotal := Subtotal(items)
	return subtotal.Add(TaxAmount(subtotal, tax)).Sub(DiscountAmount(subtotal, discount))
}
