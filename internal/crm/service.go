package crm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// ErrUnknownStatus signals a status outside the account set.
var ErrUnknownStatus = errors.New("crm: unknown account status")

const (
	customerPrefix = "CUST"
	supplierPrefix = "SUPP"
)

// Service implements customer and supplier administration.
type Service struct {
	repo     Repository
	sequence shared.Sequencer
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, sequence shared.Sequencer, logger *slog.Logger) *Service {
	return &Service{repo: repo, sequence: sequence, logger: logger}
}

// CreateCustomer validates and persists a new customer.
func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	if errs := validateParty(req.Name, req.Phone); errs.Any() {
		return nil, errs
	}

	id, err := s.sequence.Next(ctx, customerPrefix)
	if err != nil {
		return nil, fmt.Errorf("crm: issue customer number: %w", err)
	}

	partyType := req.Type
	if partyType == "" {
		partyType = CustomerIndividual
	}
	customer := &Customer{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Type:          partyType,
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Status:        PartyActive,
		Notes:         strings.TrimSpace(req.Notes),
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("crm: create customer: %w", err)
	}
	s.logger.Info("customer created", slog.String("id", customer.ID))
	return customer, nil
}

// GetCustomer loads a single customer.
func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ListCustomers returns customers matching the filter.
func (s *Service) ListCustomers(ctx context.Context, filter ListFilter) ([]Customer, int, error) {
	if filter.Status != "" && !ValidPartyStatus(filter.Status) {
		return nil, 0, ErrUnknownStatus
	}
	return s.repo.ListCustomers(ctx, filter)
}

// UpdateCustomer merges editable fields onto a customer. Aggregate
// fields (totalOrders, totalSpent, lastOrderDate) only change through
// these explicit merges.
func (s *Service) UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (*Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		customer.Type = *req.Type
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		customer.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.ContactPerson != nil {
		customer.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	if req.TotalOrders != nil {
		customer.TotalOrders = *req.TotalOrders
	}
	if req.TotalSpent != nil {
		customer.TotalSpent = *req.TotalSpent
	}
	if req.LastOrderDate != nil {
		customer.LastOrderDate = req.LastOrderDate
	}
	if req.Status != nil {
		if !ValidPartyStatus(*req.Status) {
			return nil, ErrUnknownStatus
		}
		customer.Status = *req.Status
	}
	if req.Notes != nil {
		customer.Notes = strings.TrimSpace(*req.Notes)
	}

	if errs := validateParty(customer.Name, customer.Phone); errs.Any() {
		return nil, errs
	}
	if err := s.repo.UpdateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("crm: update customer %s: %w", id, err)
	}
	return customer, nil
}

// DeleteCustomer removes a customer.
func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.repo.DeleteCustomer(ctx, id)
}

// CreateSupplier validates and persists a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*Supplier, error) {
	if errs := validateParty(req.Name, req.Phone); errs.Any() {
		return nil, errs
	}

	id, err := s.sequence.Next(ctx, supplierPrefix)
	if err != nil {
		return nil, fmt.Errorf("crm: issue supplier number: %w", err)
	}

	supplier := &Supplier{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Products:      trimList(req.Products),
		PaymentTerms:  strings.TrimSpace(req.PaymentTerms),
		Status:        PartyActive,
		Notes:         strings.TrimSpace(req.Notes),
	}
	if err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return nil, fmt.Errorf("crm: create supplier: %w", err)
	}
	s.logger.Info("supplier created", slog.String("id", supplier.ID))
	return supplier, nil
}

// GetSupplier loads a single supplier.
func (s *Service) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// ListSuppliers returns suppliers matching the filter.
func (s *Service) ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, int, error) {
	if filter.Status != "" && !ValidPartyStatus(filter.Status) {
		return nil, 0, ErrUnknownStatus
	}
	return s.repo.ListSuppliers(ctx, filter)
}

// UpdateSupplier merges editable fields onto a supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (*Supplier, error) {
	supplier, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		supplier.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		supplier.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		supplier.Address = strings.TrimSpace(*req.Address)
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	if req.Products != nil {
		supplier.Products = trimList(req.Products)
	}
	if req.TotalPurchases != nil {
		supplier.TotalPurchases = *req.TotalPurchases
	}
	if req.LastPurchaseDate != nil {
		supplier.LastPurchaseDate = req.LastPurchaseDate
	}
	if req.PaymentTerms != nil {
		supplier.PaymentTerms = strings.TrimSpace(*req.PaymentTerms)
	}
	if req.Status != nil {
		if !ValidPartyStatus(*req.Status) {
			return nil, ErrUnknownStatus
		}
		supplier.Status = *req.Status
	}
	if req.Notes != nil {
		supplier.Notes = strings.TrimSpace(*req.Notes)
	}

	if errs := validateParty(supplier.Name, supplier.Phone); errs.Any() {
		return nil, errs
	}
	if err := s.repo.UpdateSupplier(ctx, supplier); err != nil {
		return nil, fmt.Errorf("crm: update supplier %s: %w", id, err)
	}
	return supplier, nil
}

// DeleteSupplier removes a supplier.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	return s.repo.DeleteSupplier(ctx, id)
}

func validateParty(name, phone string) shared.FieldErrors {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(phone) == "" {
		errs["phone"] = "phone is required"
	}
	return errs
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
