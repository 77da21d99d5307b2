package orders

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
	// ErrInvalidTransition signals a status change the table forbids.
	ErrInvalidTransition = errors.New("orders: invalid status transition")
	// ErrUnknownStatus signals a status outside the lifecycle set.
	ErrUnknownStatus = errors.New("orders: unknown status")
)

const numberPrefix = "ORD"

// Service implements order intake and lifecycle rules.
type Service struct {
	repo     Repository
	sequence shared.Sequencer
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, sequence shared.Sequencer, logger *slog.Logger) *Service {
	return &Service{repo: repo, sequence: sequence, logger: logger}
}

// Create validates the intake form and persists a new order.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if errs := validateIntake(req.CustomerName, req.CustomerPhone, req.Items); errs.Any() {
		return nil, errs
	}

	id, err := s.sequence.Next(ctx, numberPrefix)
	if err != nil {
		return nil, fmt.Errorf("orders: issue number: %w", err)
	}

	now := time.Now().UTC()
	orderDate := now
	if req.OrderDate != nil {
		orderDate = req.OrderDate.UTC()
	}

	order := &Order{
		ID:            id,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		OrderDate:     orderDate,
		DeliveryDate:  req.DeliveryDate,
		Items:         toItems(req.Items),
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("orders: create: %w", err)
	}
	s.logger.Info("order created", slog.String("id", order.ID), slog.Float64("total", order.Total()))
	return order, nil
}

// Get loads a single order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders matching the filter plus the unfiltered match count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, ErrUnknownStatus
	}
	return s.repo.List(ctx, filter)
}

// Update merges editable fields onto an existing order.
func (s *Service) Update(ctx context.Context, id string, req UpdateOrderRequest) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CustomerName != nil {
		order.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.DeliveryDate != nil {
		order.DeliveryDate = req.DeliveryDate
	}
	if req.Items != nil {
		order.Items = toItems(req.Items)
	}

	if errs := validateIntake(order.CustomerName, order.CustomerPhone, itemRequests(order.Items)); errs.Any() {
		return nil, errs
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("orders: update %s: %w", id, err)
	}
	return order, nil
}

// UpdateStatus transitions the order through the status table.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if !ValidStatus(next) {
		return nil, ErrUnknownStatus
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, next) {
		return nil, ErrInvalidTransition
	}
	order.Status = next
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("orders: update status %s: %w", id, err)
	}
	s.logger.Info("order status changed", slog.String("id", id), slog.String("status", string(next)))
	return order, nil
}

// Delete removes an order. The confirmation round-trip lives in the
// HTTP layer; by the time this runs the caller has confirmed.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("order deleted", slog.String("id", id))
	return nil
}

func validateIntake(name, phone string, items []OrderItemRequest) shared.FieldErrors {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs["customerName"] = "customer name is required"
	}
	if strings.TrimSpace(phone) == "" {
		errs["customerPhone"] = "customer phone is required"
	}
	if len(items) == 0 {
		errs["items"] = "at least one item is required"
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			errs[fmt.Sprintf("items[%d].name", i)] = "item name is required"
		}
		if item.Price <= 0 {
			errs[fmt.Sprintf("items[%d].price", i)] = "item price must be positive"
		}
	}
	return errs
}

func toItems(reqs []OrderItemRequest) []OrderItem {
	items := make([]OrderItem, 0, len(reqs))
	for _, r := range reqs {
		qty := r.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, OrderItem{
			Name:     strings.TrimSpace(r.Name),
			Quantity: qty,
			Price:    r.Price,
			Unit:     strings.TrimSpace(r.Unit),
		})
	}
	return items
}

func itemRequests(items []OrderItem) []OrderItemRequest {
	reqs := make([]OrderItemRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, OrderItemRequest(item))
	}
	return reqs
}
