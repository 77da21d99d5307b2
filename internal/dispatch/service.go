package dispatch

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
	// ErrDriverUnavailable signals assigning a driver already on the road.
	ErrDriverUnavailable = errors.New("dispatch: driver is not available")
	// ErrInvalidTransition signals a status change the table forbids.
	ErrInvalidTransition = errors.New("dispatch: invalid status transition")
	// ErrUnknownStatus signals a status outside the lifecycle set.
	ErrUnknownStatus = errors.New("dispatch: unknown status")
)

const numberPrefix = "DEL"

// Service implements dispatch rules: delivery lifecycle and driver
// availability always move together.
type Service struct {
	repo     Repository
	sequence shared.Sequencer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, sequence shared.Sequencer, logger *slog.Logger) *Service {
	return &Service{repo: repo, sequence: sequence, logger: logger, now: time.Now}
}

// CreateDelivery opens a pending delivery for an order.
func (s *Service) CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*Delivery, error) {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(req.Customer) == "" {
		errs["customer"] = "customer is required"
	}
	if strings.TrimSpace(req.Address) == "" {
		errs["address"] = "address is required"
	}
	if errs.Any() {
		return nil, errs
	}

	id, err := s.sequence.Next(ctx, numberPrefix)
	if err != nil {
		return nil, fmt.Errorf("dispatch: issue number: %w", err)
	}

	delivery := &Delivery{
		ID:            id,
		OrderID:       strings.TrimSpace(req.OrderID),
		Customer:      strings.TrimSpace(req.Customer),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Address:       strings.TrimSpace(req.Address),
		ScheduledDate: strings.TrimSpace(req.ScheduledDate),
		ScheduledTime: strings.TrimSpace(req.ScheduledTime),
		Status:        StatusPending,
		Items:         req.Items,
		Notes:         strings.TrimSpace(req.Notes),
	}
	if err := s.repo.CreateDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("dispatch: create delivery: %w", err)
	}
	s.logger.Info("delivery created", slog.String("id", delivery.ID))
	return delivery, nil
}

// GetDelivery loads a single delivery.
func (s *Service) GetDelivery(ctx context.Context, id string) (*Delivery, error) {
	return s.repo.GetDelivery(ctx, id)
}

// ListDeliveries returns deliveries matching the filter.
func (s *Service) ListDeliveries(ctx context.Context, filter ListFilter) ([]Delivery, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, ErrUnknownStatus
	}
	return s.repo.ListDeliveries(ctx, filter)
}

// Assign puts a driver on a delivery: driver identity is copied onto
// the delivery, the driver becomes unavailable, and the delivery moves
// to assigned. Both writes happen in one transaction.
func (s *Service) Assign(ctx context.Context, deliveryID string, req AssignRequest) (*Delivery, error) {
	errs := shared.FieldErrors{}
	if req.DriverID == 0 {
		errs["driverId"] = "driver is required"
	}
	if strings.TrimSpace(req.Date) == "" {
		errs["date"] = "delivery date is required"
	}
	if strings.TrimSpace(req.Time) == "" {
		errs["time"] = "delivery time is required"
	}
	if errs.Any() {
		return nil, errs
	}

	delivery, err := s.repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	driver, err := s.repo.GetDriver(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.Available {
		return nil, ErrDriverUnavailable
	}

	now := s.now().UTC()
	delivery.DriverID = &driver.ID
	delivery.DriverName = driver.Name
	delivery.DriverPhone = driver.Phone
	delivery.DriverVehicle = driver.Vehicle
	delivery.ScheduledDate = strings.TrimSpace(req.Date)
	delivery.ScheduledTime = strings.TrimSpace(req.Time)
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		delivery.Notes = notes
	}
	delivery.Status = StatusAssigned
	delivery.AssignedAt = &now
	delivery.DeliveredAt = nil

	if err := s.repo.SaveAssignment(ctx, delivery, driver.ID); err != nil {
		return nil, fmt.Errorf("dispatch: assign %s: %w", deliveryID, err)
	}
	s.logger.Info("delivery assigned",
		slog.String("id", delivery.ID),
		slog.Int64("driver", driver.ID),
	)
	return delivery, nil
}

// UpdateStatus transitions the delivery and keeps the assigned driver's
// availability in line: delivered and failed release the driver by id.
func (s *Service) UpdateStatus(ctx context.Context, deliveryID string, next Status) (*Delivery, error) {
	if !ValidStatus(next) {
		return nil, ErrUnknownStatus
	}
	delivery, err := s.repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(delivery.Status, next) {
		return nil, ErrInvalidTransition
	}

	var releaseDriver *int64
	if delivery.DriverID != nil {
		wasOccupying := delivery.Status.Occupies()
		if wasOccupying && !next.Occupies() {
			releaseDriver = delivery.DriverID
		}
	}

	delivery.Status = next
	if next == StatusDelivered {
		now := s.now().UTC()
		delivery.DeliveredAt = &now
	} else {
		delivery.DeliveredAt = nil
	}

	if err := s.repo.SaveStatus(ctx, delivery, releaseDriver); err != nil {
		return nil, fmt.Errorf("dispatch: update status %s: %w", deliveryID, err)
	}
	s.logger.Info("delivery status changed",
		slog.String("id", delivery.ID),
		slog.String("status", string(next)),
	)
	return delivery, nil
}

// DeleteDelivery removes a delivery, releasing its driver if held.
func (s *Service) DeleteDelivery(ctx context.Context, id string) error {
	delivery, err := s.repo.GetDelivery(ctx, id)
	if err != nil {
		return err
	}
	var releaseDriver *int64
	if delivery.DriverID != nil && delivery.Status.Occupies() {
		releaseDriver = delivery.DriverID
	}
	return s.repo.DeleteDelivery(ctx, id, releaseDriver)
}

// Stats counts deliveries per status.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// CreateDriver registers an available driver.
func (s *Service) CreateDriver(ctx context.Context, req CreateDriverRequest) (*Driver, error) {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "driver name is required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		errs["phone"] = "driver phone is required"
	}
	if errs.Any() {
		return nil, errs
	}
	driver := &Driver{
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Vehicle:   strings.TrimSpace(req.Vehicle),
		Available: true,
	}
	if err := s.repo.CreateDriver(ctx, driver); err != nil {
		return nil, fmt.Errorf("dispatch: create driver: %w", err)
	}
	return driver, nil
}

// ListDrivers returns all drivers, optionally only available ones.
func (s *Service) ListDrivers(ctx context.Context, onlyAvailable bool) ([]Driver, error) {
	return s.repo.ListDrivers(ctx, onlyAvailable)
}
