package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicesimple/internal/invoice"
	"invoicesimple/internal/model"
)

type stubRenderer struct {
	html string
	data []byte
	err  error
}

func (r *stubRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	r.html = html
	if r.err != nil {
		return nil, r.err
	}
	return r.data, nil
}

func sampleInvoice() (model.Invoice, invoice.Totals) {
	inv := model.NewDefaultInvoice(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	inv.Number = "INV0042"
	inv.From.Name = "Studio North"
	inv.To.Name = "Acme Ltd"
	inv.Items[0].Description = "Design work"
	inv.Items[0].Rate = decimal.NewFromInt(200)
	inv.Items[0].Qty = 2
	inv.Tax = model.Tax{Type: model.TaxTypeGST, Rate: decimal.NewFromInt(10)}
	totals := invoice.Totals{
		Subtotal: decimal.NewFromInt(400),
		Tax:      decimal.NewFromInt(40),
		Total:    decimal.NewFromInt(440),
	}
	return inv, totals
}

func TestRenderHTMLIncludesLineItemsAndTotals(t *testing.T) {
	inv, totals := sampleInvoice()

	html, err := RenderHTML(inv, totals, model.DefaultSettings())
	require.NoError(t, err)

	assert.Contains(t, html, "INV0042")
	assert.Contains(t, html, "Design work")
	assert.Contains(t, html, "400.00 INR")
	assert.Contains(t, html, "GST (10%)")
	assert.Contains(t, html, "440.00 INR")
	assert.Contains(t, html, "Acme Ltd")
}

func TestRenderHTMLOmitsZeroTaxAndDiscount(t *testing.T) {
	inv, totals := sampleInvoice()
	inv.Tax = model.Tax{Type: model.TaxTypeNone, Rate: decimal.Zero}
	totals.Tax = decimal.Zero
	totals.Total = totals.Subtotal

	html, err := RenderHTML(inv, totals, model.DefaultSettings())
	require.NoError(t, err)

	assert.NotContains(t, html, "GST")
	assert.NotContains(t, html, "Discount")
}

func TestRenderHTMLBankDetailsAndReviewLink(t *testing.T) {
	inv, totals := sampleInvoice()
	inv.BankDetails = &model.BankDetails{
		AccountNumber: model.BankLabelAccountNumber + "12345678",
		IFSC:          model.BankLabelIFSC + "HDFC0001234",
	}
	settings := model.DefaultSettings()
	settings.RequestReviews = true
	settings.ReviewLink = "https://example.com/review"

	html, err := RenderHTML(inv, totals, settings)
	require.NoError(t, err)

	assert.Contains(t, html, "A/C No.: 12345678")
	assert.Contains(t, html, "IFSC: HDFC0001234")
	assert.Contains(t, html, "https://example.com/review")
}

func TestAccentColor(t *testing.T) {
	assert.Equal(t, "#2563eb", AccentColor(model.InvoiceSettings{TemplateColor: model.TemplateColorDefault}))
	assert.Equal(t, "#1e3a8a", AccentColor(model.InvoiceSettings{TemplateColor: model.TemplateColorNavy}))
	assert.Equal(t, "#2563eb", AccentColor(model.InvoiceSettings{TemplateColor: "nonsense"}))
	assert.Equal(t, "#123456", AccentColor(model.InvoiceSettings{
		TemplateColor: model.TemplateColorCustom,
		CustomColor:   "#123456",
	}))
	// Custom selected but no color set falls back to default.
	assert.Equal(t, "#2563eb", AccentColor(model.InvoiceSettings{TemplateColor: model.TemplateColorCustom}))
}

func TestFileNameUsesMonthName(t *testing.T) {
	inv := model.Invoice{Number: "INV0007", Date: "2024-03-05"}
	assert.Equal(t, "INV0007 - March.pdf", FileName(inv))

	inv.Date = "garbage"
	assert.Equal(t, "INV0007.pdf", FileName(inv))
}

func TestGeneratorWritesFile(t *testing.T) {
	dir := t.TempDir()
	renderer := &stubRenderer{data: []byte("%PDF-1.4 fake")}
	generator := NewGenerator(renderer, dir, nil)

	inv, totals := sampleInvoice()
	name, err := generator.Generate(context.Background(), inv, totals, model.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "INV0042 - January.pdf", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.True(t, strings.Contains(renderer.html, "INV0042"), "renderer received the invoice markup")
}

func TestGeneratorPropagatesRenderFailure(t *testing.T) {
	generator := NewGenerator(&stubRenderer{err: errors.New("browser crashed")}, t.TempDir(), nil)

	inv, totals := sampleInvoice()
	_, err := generator.Generate(context.Background(), inv, totals, model.DefaultSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser crashed")
}
