// Package email delivers invoices to clients through Resend.
package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"invoicesimple/internal/invoice"
	"invoicesimple/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Config holds the sender configuration. With Enabled false or no API key
// the sender validates input but reports delivery as unavailable.
// AttachmentDir is the directory the document generator writes PDFs into;
// attachment names resolve against it.
type Config struct {
	Enabled       bool
	APIKey        string
	FromAddress   string
	AttachmentDir string
}

// Sender implements the store's EmailSender contract on top of Resend.
type Sender struct {
	client        *resend.Client
	enabled       bool
	fromAddress   string
	attachmentDir string
	logger        *zap.Logger
}

func NewSender(cfg Config, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled || cfg.APIKey == "" {
		return &Sender{enabled: false, attachmentDir: cfg.AttachmentDir, logger: logger}
	}
	return &Sender{
		client:        resend.NewClient(cfg.APIKey),
		enabled:       true,
		fromAddress:   cfg.FromAddress,
		attachmentDir: cfg.AttachmentDir,
		logger:        logger,
	}
}

// IsEnabled reports whether delivery is configured.
func (s *Sender) IsEnabled() bool {
	return s.enabled
}

// Send validates the request, then delivers the invoice with the attachment
// reference. Validation failures and transport failures both come back as a
// failed result with a human-readable message, never as a panic.
func (s *Sender) Send(ctx context.Context, inv model.Invoice, recipient, attachment string) invoice.EmailResult {
	if recipient == "" {
		return invoice.EmailResult{Success: false, Message: "Recipient email is required"}
	}
	if attachment == "" {
		return invoice.EmailResult{Success: false, Message: "PDF attachment is required"}
	}
	if !emailPattern.MatchString(recipient) {
		return invoice.EmailResult{Success: false, Message: "Invalid email address format"}
	}
	if inv.Number == "" || inv.From.Name == "" {
		return invoice.EmailResult{Success: false, Message: "Invoice is missing required information (number or sender name)"}
	}

	if !s.enabled {
		return invoice.EmailResult{Success: false, Message: "Email delivery is not configured"}
	}

	content, err := s.loadAttachment(attachment)
	if err != nil {
		s.logger.Error("failed to read PDF attachment",
			zap.String("invoiceNumber", inv.Number),
			zap.String("attachment", attachment),
			zap.Error(err))
		return invoice.EmailResult{Success: false, Message: "Failed to read PDF attachment"}
	}

	subject := fmt.Sprintf("Invoice %s from %s", inv.Number, inv.From.Name)
	params := &resend.SendEmailRequest{
		From:    s.fromAddress,
		To:      []string{recipient},
		Subject: subject,
		Text:    fmt.Sprintf("Please find invoice %s attached as %s.", inv.Number, attachment),
		Attachments: []*resend.Attachment{{
			Filename:    attachment,
			Content:     content,
			ContentType: "application/pdf",
		}},
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("failed to send invoice email",
			zap.String("invoiceNumber", inv.Number),
			zap.String("recipient", recipient),
			zap.Error(err))
		return invoice.EmailResult{Success: false, Message: "Failed to send email"}
	}

	s.logger.Info("invoice email sent",
		zap.String("invoiceNumber", inv.Number),
		zap.String("recipient", recipient),
		zap.String("attachment", attachment),
		zap.String("messageId", sent.Id))
	return invoice.EmailResult{
		Success: true,
		Message: fmt.Sprintf("Invoice has been sent to %s successfully", recipient),
	}
}

// loadAttachment reads a generated PDF by its bare file name. Names resolve
// against the configured attachment directory only; path separators in the
// name are rejected.
func (s *Sender) loadAttachment(name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid attachment name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.attachmentDir, name))
	if err != nil {
		return nil, err
	}
	return data, nil
}

var _ invoice.EmailSender = (*Sender)(nil)
