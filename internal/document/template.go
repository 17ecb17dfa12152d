package document

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"invoicesimple/internal/invoice"
	"invoicesimple/internal/model"
)

// templateColors maps the settings palette to accent hex values.
var templateColors = map[string]string{
	model.TemplateColorDefault: "#2563eb",
	model.TemplateColorGray:    "#6b7280",
	model.TemplateColorDark:    "#1f2937",
	model.TemplateColorSlate:   "#475569",
	model.TemplateColorRed:     "#dc2626",
	model.TemplateColorPink:    "#db2777",
	model.TemplateColorPurple:  "#9333ea",
	model.TemplateColorNavy:    "#1e3a8a",
	model.TemplateColorBlue:    "#3b82f6",
	model.TemplateColorSky:     "#0ea5e9",
	model.TemplateColorTeal:    "#0d9488",
	model.TemplateColorGreen:   "#16a34a",
	model.TemplateColorLime:    "#65a30d",
}

// AccentColor resolves the settings palette choice to a hex color. A custom
// color wins when selected and present; unknown values fall back to default.
func AccentColor(settings model.InvoiceSettings) string {
	if settings.TemplateColor == model.TemplateColorCustom && settings.CustomColor != "" {
		return settings.CustomColor
	}
	if hex, ok := templateColors[settings.TemplateColor]; ok {
		return hex
	}
	return templateColors[model.TemplateColorDefault]
}

type templateLine struct {
	Description string
	Rate        string
	Qty         int
	Amount      string
}

type templateData struct {
	Invoice     model.Invoice
	Lines       []templateLine
	Subtotal    string
	TaxLabel    string
	TaxAmount   string
	Discount    string
	Total       string
	AccentColor string
	ReviewLink  string
	BankLines   []string
	// Logo and Signature are data URIs; typed so the template engine does
	// not strip them from src attributes.
	Logo      template.URL
	Signature template.URL
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Invoice.Number}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #111827; font-size: 13px; }
  h1 { color: {{.AccentColor}}; margin-bottom: 0; }
  .meta, .parties { width: 100%; margin-bottom: 24px; }
  .parties td { vertical-align: top; width: 50%; }
  table.items { width: 100%; border-collapse: collapse; }
  table.items th { background: {{.AccentColor}}; color: #fff; text-align: left; padding: 6px 8px; }
  table.items td { border-bottom: 1px solid #e5e7eb; padding: 6px 8px; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
  .totals td { padding: 4px 8px; }
  .totals .grand { font-weight: bold; border-top: 2px solid {{.AccentColor}}; }
  .notes, .bank { margin-top: 24px; color: #374151; white-space: pre-line; }
  .signature img, .logo img { max-height: 80px; }
  .review { margin-top: 16px; font-size: 12px; }
</style>
</head>
<body>
{{if .Logo}}<div class="logo"><img src="{{.Logo}}" alt="logo"></div>{{end}}
<h1>Invoice {{.Invoice.Number}}</h1>
<table class="meta">
<tr><td>Date: {{.Invoice.Date}}</td>
{{if .Invoice.DueDate}}<td>Due: {{.Invoice.DueDate}}</td>{{end}}
{{if .Invoice.Terms}}<td>Terms: {{.Invoice.Terms}}</td>{{end}}</tr>
</table>
<table class="parties">
<tr>
<td><strong>From</strong><br>{{.Invoice.From.Name}}<br>{{.Invoice.From.Email}}<br>{{.Invoice.From.Address.Street1}} {{.Invoice.From.Address.City}} {{.Invoice.From.Address.Zip}}</td>
<td><strong>Bill To</strong><br>{{.Invoice.To.Name}}<br>{{.Invoice.To.Email}}<br>{{.Invoice.To.Address.Street1}} {{.Invoice.To.Address.City}} {{.Invoice.To.Address.Zip}}</td>
</tr>
</table>
<table class="items">
<tr><th>Description</th><th>Rate</th><th>Qty</th><th>Amount</th></tr>
{{range .Lines}}<tr><td>{{.Description}}</td><td>{{.Rate}}</td><td>{{.Qty}}</td><td>{{.Amount}}</td></tr>
{{end}}</table>
<table class="totals">
<tr><td>Subtotal</td><td>{{.Subtotal}}</td></tr>
{{if .TaxLabel}}<tr><td>{{.TaxLabel}}</td><td>{{.TaxAmount}}</td></tr>{{end}}
{{if .Discount}}<tr><td>Discount</td><td>-{{.Discount}}</td></tr>{{end}}
<tr class="grand"><td>Total</td><td>{{.Total}}</td></tr>
</table>
{{if .Invoice.Notes}}<div class="notes">{{.Invoice.Notes}}</div>{{end}}
{{if .BankLines}}<div class="bank">{{range .BankLines}}{{.}}
{{end}}</div>{{end}}
{{if .Signature}}<div class="signature"><img src="{{.Signature}}" alt="signature"></div>{{end}}
{{if .ReviewLink}}<div class="review">Enjoyed working with us? Leave a review: {{.ReviewLink}}</div>{{end}}
</body>
</html>`))

// RenderHTML builds the printable invoice document from a finalized
// snapshot. Totals arrive precomputed; nothing is recalculated here.
func RenderHTML(inv model.Invoice, totals invoice.Totals, settings model.InvoiceSettings) (string, error) {
	lines := make([]templateLine, 0, len(inv.Items))
	for _, item := range inv.Items {
		lines = append(lines, templateLine{
			Description: item.Description,
			Rate:        formatMoney(item.Rate.StringFixed(2), inv.Currency),
			Qty:         item.Qty,
			Amount:      formatMoney(item.Rate.Mul(qtyDecimal(item.Qty)).StringFixed(2), inv.Currency),
		})
	}

	data := templateData{
		Invoice:     inv,
		Lines:       lines,
		Subtotal:    formatMoney(totals.Subtotal.StringFixed(2), inv.Currency),
		Total:       formatMoney(totals.Total.StringFixed(2), inv.Currency),
		AccentColor: AccentColor(settings),
		Logo:        template.URL(inv.Logo),
		Signature:   template.URL(inv.Signature),
	}
	if inv.Tax.Type != model.TaxTypeNone && !totals.Tax.IsZero() {
		data.TaxLabel = fmt.Sprintf("%s (%s%%)", inv.Tax.Type, inv.Tax.Rate.String())
		data.TaxAmount = formatMoney(totals.Tax.StringFixed(2), inv.Currency)
	}
	if inv.Discount.Type != model.DiscountTypeNone && !totals.Discount.IsZero() {
		data.Discount = formatMoney(totals.Discount.StringFixed(2), inv.Currency)
	}
	if settings.RequestReviews && settings.ReviewLink != "" {
		data.ReviewLink = settings.ReviewLink
	}
	if bd := inv.BankDetails; bd != nil {
		for _, line := range []string{bd.AccountNumber, bd.CIFNumber, bd.Branch, bd.IFSC} {
			if line != "" {
				data.BankLines = append(data.BankLines, line)
			}
		}
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

func formatMoney(amount, currency string) string {
	return amount + " " + currency
}

// FileName derives the document name from the invoice number and the month
// of its date, e.g. "INV0001 - January.pdf". An unparseable date drops the
// month part.
func FileName(inv model.Invoice) string {
	t, err := time.Parse(model.DateLayout, inv.Date)
	if err != nil {
		return inv.Number + ".pdf"
	}
	return fmt.Sprintf("%s - %s.pdf", inv.Number, t.Month().String())
}
