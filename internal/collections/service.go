package collections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hcp-erp/hcp-erp/internal/billing"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

var (
	// ErrUnknownStatus signals a status outside the ledger set.
	ErrUnknownStatus = errors.New("collections: unknown status")
	// ErrUnknownMethod signals a payment channel outside the ledger set.
	ErrUnknownMethod = errors.New("collections: unknown payment method")
)

const numberPrefix = "COL"

// Service maintains the receipt ledger.
type Service struct {
	repo     Repository
	sequence shared.Sequencer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, sequence shared.Sequencer, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sequence: sequence,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates and persists a manually entered collection.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Collection, error) {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(req.Collector) == "" {
		errs["collector"] = "collector is required"
	}
	if strings.TrimSpace(req.Customer) == "" {
		errs["customer"] = "customer is required"
	}
	if req.Amount <= 0 {
		errs["amount"] = "amount must be positive"
	}
	if !ValidMethod(req.Method) {
		errs["method"] = "unknown payment method"
	}
	if req.Status != "" && !ValidStatus(req.Status) {
		errs["status"] = "unknown status"
	}
	if errs.Any() {
		return nil, errs
	}

	status := req.Status
	if status == "" {
		status = StatusCompleted
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	id, err := s.sequence.Next(ctx, numberPrefix)
	if err != nil {
		return nil, fmt.Errorf("collections: issue number: %w", err)
	}

	record := &Collection{
		ID:        id,
		Date:      date,
		Collector: strings.TrimSpace(req.Collector),
		Customer:  strings.TrimSpace(req.Customer),
		InvoiceID: strings.TrimSpace(req.InvoiceID),
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: strings.TrimSpace(req.Reference),
		Status:    status,
		Notes:     strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("collections: create: %w", err)
	}
	s.logger.Info("collection recorded",
		slog.String("id", record.ID),
		slog.Float64("amount", record.Amount),
		slog.String("method", string(record.Method)))
	return record, nil
}

// RecordReceipt mirrors a billing payment into the ledger. Receipts
// arrive already validated, so they land as completed records.
func (s *Service) RecordReceipt(ctx context.Context, receipt billing.Receipt) error {
	collector := strings.TrimSpace(receipt.Collector)
	if collector == "" {
		collector = "system"
	}

	id, err := s.sequence.Next(ctx, numberPrefix)
	if err != nil {
		return fmt.Errorf("collections: issue number: %w", err)
	}

	record := &Collection{
		ID:        id,
		Date:      receipt.Date,
		Collector: collector,
		Customer:  receipt.Customer,
		InvoiceID: receipt.InvoiceID,
		Amount:    receipt.Amount,
		Method:    Method(receipt.Method),
		Reference: receipt.Reference,
		Status:    StatusCompleted,
		Notes:     receipt.Notes,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("collections: mirror receipt for %s: %w", receipt.InvoiceID, err)
	}
	return nil
}

// Get loads a single collection.
func (s *Service) Get(ctx context.Context, id string) (*Collection, error) {
	return s.repo.Get(ctx, id)
}

// List returns collections matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Collection, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, ErrUnknownStatus
	}
	if filter.Method != "" && !ValidMethod(filter.Method) {
		return nil, 0, ErrUnknownMethod
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus settles a pending collection as completed or failed.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Collection, error) {
	if !ValidStatus(status) {
		return nil, ErrUnknownStatus
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Status = status
	if err := s.repo.SaveStatus(ctx, record); err != nil {
		return nil, fmt.Errorf("collections: update status of %s: %w", id, err)
	}
	return record, nil
}

// Delete removes a collection from the ledger.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Summary computes the dashboard figures over the whole ledger.
func (s *Service) Summary(ctx context.Context) (*StatsResponse, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("collections: load ledger: %w", err)
	}
	return &StatsResponse{
		Stats:      ComputeStats(records, s.now()),
		Collectors: TopCollectors(records),
		Methods:    MethodTotals(records),
	}, nil
}

var _ billing.Ledger = (*Service)(nil)
