package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

var (
	// ErrInvalidAmount signals a payment amount at or below zero.
	ErrInvalidAmount = errors.New("billing: payment amount must be positive")
	// ErrOverpayment signals a payment above the remaining balance.
	ErrOverpayment = errors.New("billing: payment exceeds remaining balance")
	// ErrInvalidMethod signals an unknown payment channel.
	ErrInvalidMethod = errors.New("billing: unknown payment method")
)

const (
	numberPrefix   = "INV"
	defaultDueDays = 30
)

// Receipt is the ledger mirror of a recorded payment.
type Receipt struct {
	InvoiceID string
	Customer  string
	Date      time.Time
	Amount    float64
	Method    Method
	Reference string
	Notes     string
	Collector string
}

// Ledger receives a copy of every recorded payment. The collections
// module implements it.
type Ledger interface {
	RecordReceipt(ctx context.Context, receipt Receipt) error
}

// Service implements invoicing and payment recording.
type Service struct {
	repo     Repository
	sequence shared.Sequencer
	ledger   Ledger
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service. ledger may be nil when receipts
// should not be mirrored (tests).
func NewService(repo Repository, sequence shared.Sequencer, ledger Ledger, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sequence: sequence,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// Create opens an invoice against an order.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(req.Customer) == "" {
		errs["customer"] = "customer is required"
	}
	if req.Amount <= 0 {
		errs["amount"] = "amount must be positive"
	}
	if errs.Any() {
		return nil, errs
	}

	id, err := s.sequence.Next(ctx, numberPrefix)
	if err != nil {
		return nil, fmt.Errorf("billing: issue number: %w", err)
	}

	now := s.now().UTC()
	issue := now
	if req.IssueDate != nil {
		issue = req.IssueDate.UTC()
	}
	due := issue.AddDate(0, 0, defaultDueDays)
	if req.DueDate != nil {
		due = req.DueDate.UTC()
	}

	invoice := &Invoice{
		ID:        id,
		OrderID:   strings.TrimSpace(req.OrderID),
		Customer:  strings.TrimSpace(req.Customer),
		Amount:    req.Amount,
		IssueDate: issue,
		DueDate:   due,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("billing: create: %w", err)
	}
	s.logger.Info("invoice created", slog.String("id", invoice.ID), slog.Float64("amount", invoice.Amount))
	return invoice, nil
}

// Get loads a single invoice.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns invoices matching the filter. Status filtering is done
// here because status is derived, not stored.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if filter.Status == "" {
		return invoices, total, nil
	}
	now := s.now()
	filtered := invoices[:0]
	for _, invoice := range invoices {
		if invoice.StatusAt(now) == filter.Status {
			filtered = append(filtered, invoice)
		}
	}
	return filtered, len(filtered), nil
}

// RecordPayment appends a receipt to the invoice. Rejections leave the
// invoice untouched: the paid amount can never exceed the total.
func (s *Service) RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest) (*Invoice, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !ValidMethod(req.Method) {
		return nil, ErrInvalidMethod
	}

	invoice, err := s.repo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if req.Amount > invoice.Remaining() {
		return nil, ErrOverpayment
	}

	now := s.now().UTC()
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = fmt.Sprintf("PAY-%d", now.UnixMilli())
	}
	payment := Payment{
		Date:      now,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: reference,
		Notes:     strings.TrimSpace(req.Notes),
	}

	invoice.Payments = append(invoice.Payments, payment)
	invoice.PaidAmount += payment.Amount
	if err := s.repo.SavePayment(ctx, invoice, payment); err != nil {
		return nil, fmt.Errorf("billing: record payment on %s: %w", invoiceID, err)
	}

	if s.ledger != nil {
		receipt := Receipt{
			InvoiceID: invoice.ID,
			Customer:  invoice.Customer,
			Date:      payment.Date,
			Amount:    payment.Amount,
			Method:    payment.Method,
			Reference: payment.Reference,
			Notes:     payment.Notes,
		}
		if err := s.ledger.RecordReceipt(ctx, receipt); err != nil {
			s.logger.Warn("ledger mirror failed",
				slog.String("invoice", invoice.ID),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Info("payment recorded",
		slog.String("invoice", invoice.ID),
		slog.Float64("amount", payment.Amount),
		slog.String("status", string(invoice.StatusAt(now))),
	)
	return invoice, nil
}

// Overdue returns invoices past their due date and not fully paid.
func (s *Service) Overdue(ctx context.Context) ([]Invoice, error) {
	invoices, _, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	var overdue []Invoice
	for _, invoice := range invoices {
		if invoice.StatusAt(now) == StatusOverdue {
			overdue = append(overdue, invoice)
		}
	}
	return overdue, nil
}

// Stats aggregates the billing book.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	invoices, _, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	stats := &Stats{}
	for _, invoice := range invoices {
		stats.TotalInvoiced += invoice.Amount
		stats.TotalCollected += invoice.PaidAmount
		stats.TotalPending += invoice.Remaining()
		if invoice.StatusAt(now) == StatusOverdue {
			stats.OverdueCount++
		}
	}
	return stats, nil
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
