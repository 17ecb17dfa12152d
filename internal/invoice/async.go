package invoice

import (
	"context"
	"fmt"
	"time"

	"invoicesimple/internal/model"
	"invoicesimple/internal/schedule"
)

// GeneratePDF hands the current draft to the document collaborator. The busy
// flag is set while the collaborator runs and cleared in all cases; the
// outcome is always surfaced through the status message. The returned name
// is empty on failure.
func (s *Store) GeneratePDF(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.processing = true
	s.setStatusLocked("Generating PDF...")
	snapshot := s.current.Clone()
	totals := s.totalsLocked()
	settings := s.settings
	s.mu.Unlock()

	fileName, err := s.documents.Generate(ctx, snapshot, totals, settings)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false
	if err != nil {
		s.setStatusLocked("Error: " + err.Error())
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}
	s.setStatusLocked("PDF generated successfully: " + fileName)
	return fileName, nil
}

// EmailInvoice generates a PDF for the current draft and hands it to the
// email collaborator. A failed generation aborts the send and is reported as
// a PDF failure, not an email failure. Returns overall success plus the
// user-facing message.
func (s *Store) EmailInvoice(ctx context.Context, recipientEmail string) (bool, string) {
	s.mu.Lock()
	s.processing = true
	s.setStatusLocked("Preparing to send email...")
	s.mu.Unlock()

	fileName, err := s.GeneratePDF(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.processing = false
		s.setStatusLocked("PDF generation failed: " + err.Error())
		return false, s.statusMsg
	}

	s.mu.Lock()
	s.processing = true
	s.setStatusLocked("Sending email...")
	snapshot := s.current.Clone()
	s.mu.Unlock()

	result := s.mailer.Send(ctx, snapshot, recipientEmail, fileName)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false
	s.setStatusLocked(result.Message)
	return result.Success, result.Message
}

// CreateSchedule computes the draft's total and generates an installment
// plan, replacing any previously generated one. startDate defaults to today
// when empty; it is resolved here, once, so the generator stays
// deterministic.
func (s *Store) CreateSchedule(intervals int, startDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	if startDate != "" {
		parsed, err := time.Parse(model.DateLayout, startDate)
		if err != nil {
			err = fmt.Errorf("invalid start date %q: %w", startDate, err)
			s.setStatusLocked("Could not create payment schedule: " + err.Error())
			return err
		}
		start = parsed
	}

	totals := s.totalsLocked()
	installments, err := schedule.Create(schedule.Params{
		InvoiceID:        s.current.ID,
		InvoiceAmount:    totals.Total,
		NumberOfPayments: intervals,
		StartDate:        start,
	})
	if err != nil {
		s.setStatusLocked("Could not create payment schedule: " + err.Error())
		return err
	}

	s.schedule = installments
	return nil
}
