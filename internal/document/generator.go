package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"invoicesimple/internal/invoice"
	"invoicesimple/internal/model"
)

// Generator renders invoices to PDF files on disk. It satisfies the
// store's DocumentGenerator contract.
type Generator struct {
	renderer  Renderer
	outputDir string
	logger    *zap.Logger
}

func NewGenerator(renderer Renderer, outputDir string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{renderer: renderer, outputDir: outputDir, logger: logger}
}

// Generate writes the invoice PDF into the output directory and returns the
// file name it was saved under.
func (g *Generator) Generate(ctx context.Context, inv model.Invoice, totals invoice.Totals, settings model.InvoiceSettings) (string, error) {
	html, err := RenderHTML(inv, totals, settings)
	if err != nil {
		return "", err
	}

	data, err := g.renderer.RenderPDF(ctx, html)
	if err != nil {
		return "", fmt.Errorf("failed to render PDF: %w", err)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := FileName(inv)
	path := filepath.Join(g.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write PDF file: %w", err)
	}

	g.logger.Info("invoice PDF generated",
		zap.String("invoiceNumber", inv.Number),
		zap.String("file", path),
		zap.Int("bytes", len(data)))
	return name, nil
}

var _ invoice.DocumentGenerator = (*Generator)(nil)

func qtyDecimal(qty int) decimal.Decimal {
	return decimal.NewFromInt(int64(qty))
}
