package crm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type memoryCRMRepo struct {
	customers map[string]Customer
	suppliers map[string]Supplier
}

func newMemoryCRMRepo() *memoryCRMRepo {
	return &memoryCRMRepo{
		customers: make(map[string]Customer),
		suppliers: make(map[string]Supplier),
	}
}

func (m *memoryCRMRepo) CreateCustomer(ctx context.Context, customer *Customer) error {
	m.customers[customer.ID] = *customer
	return nil
}

func (m *memoryCRMRepo) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &customer, nil
}

func (m *memoryCRMRepo) ListCustomers(ctx context.Context, filter ListFilter) ([]Customer, int, error) {
	var result []Customer
	for _, customer := range m.customers {
		if filter.Status != "" && customer.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(customer.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, customer)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memoryCRMRepo) UpdateCustomer(ctx context.Context, customer *Customer) error {
	if _, ok := m.customers[customer.ID]; !ok {
		return shared.ErrNotFound
	}
	m.customers[customer.ID] = *customer
	return nil
}

func (m *memoryCRMRepo) DeleteCustomer(ctx context.Context, id string) error {
	if _, ok := m.customers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *memoryCRMRepo) CreateSupplier(ctx context.Context, supplier *Supplier) error {
	m.suppliers[supplier.ID] = *supplier
	return nil
}

func (m *memoryCRMRepo) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	supplier, ok := m.suppliers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &supplier, nil
}

func (m *memoryCRMRepo) ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, int, error) {
	var result []Supplier
	for _, supplier := range m.suppliers {
		if filter.Status != "" && supplier.Status != filter.Status {
			continue
		}
		result = append(result, supplier)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memoryCRMRepo) UpdateSupplier(ctx context.Context, supplier *Supplier) error {
	if _, ok := m.suppliers[supplier.ID]; !ok {
		return shared.ErrNotFound
	}
	m.suppliers[supplier.ID] = *supplier
	return nil
}

func (m *memoryCRMRepo) DeleteSupplier(ctx context.Context, id string) error {
	if _, ok := m.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.suppliers, id)
	return nil
}

type stubSequencer struct {
	n int64
}

func (s *stubSequencer) Next(ctx context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%03d", prefix, s.n), nil
}

func newTestService() (*Service, *memoryCRMRepo) {
	repo := newMemoryCRMRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, &stubSequencer{}, logger), repo
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestService()

	customer, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name:  "Eastern Paints Est.",
		Type:  CustomerCompany,
		Phone: "0551234567",
	})
	require.NoError(t, err)
	require.Equal(t, "CUST-001", customer.ID)
	require.Equal(t, PartyActive, customer.Status)
	require.Zero(t, customer.TotalOrders)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "phone")
	require.Empty(t, repo.customers)
}

func TestCustomerAggregatesChangeOnlyByMerge(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Al Noor", Phone: "0551112222"})
	require.NoError(t, err)

	orders := 12
	spent := 45000.0
	last := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateCustomer(ctx, customer.ID, UpdateCustomerRequest{
		TotalOrders:   &orders,
		TotalSpent:    &spent,
		LastOrderDate: &last,
	})
	require.NoError(t, err)
	require.Equal(t, 12, updated.TotalOrders)
	require.Equal(t, 45000.0, updated.TotalSpent)
	require.Equal(t, last, *updated.LastOrderDate)
}

func TestCustomerStatusChange(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Gulf Coatings", Phone: "0553334444"})
	require.NoError(t, err)

	blocked := PartyBlocked
	updated, err := svc.UpdateCustomer(ctx, customer.ID, UpdateCustomerRequest{Status: &blocked})
	require.NoError(t, err)
	require.Equal(t, PartyBlocked, updated.Status)

	bogus := PartyStatus("suspended")
	_, err = svc.UpdateCustomer(ctx, customer.ID, UpdateCustomerRequest{Status: &bogus})
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCreateSupplierTrimsProductList(t *testing.T) {
	svc, _ := newTestService()

	supplier, err := svc.CreateSupplier(context.Background(), CreateSupplierRequest{
		Name:     "National Paints",
		Phone:    "0556667777",
		Products: []string{" Interior White 20L ", "", "Exterior Grey 20L"},
	})
	require.NoError(t, err)
	require.Equal(t, "SUPP-001", supplier.ID)
	require.Equal(t, []string{"Interior White 20L", "Exterior Grey 20L"}, supplier.Products)
}

func TestSequencesAreIndependentPerPrefix(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "A", Phone: "1"})
	require.NoError(t, err)
	supplier, err := svc.CreateSupplier(ctx, CreateSupplierRequest{Name: "B", Phone: "2"})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(customer.ID, "CUST-"))
	require.True(t, strings.HasPrefix(supplier.ID, "SUPP-"))
}

func TestListCustomersByStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	active, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "A", Phone: "1"})
	require.NoError(t, err)
	other, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "B", Phone: "2"})
	require.NoError(t, err)
	inactive := PartyInactive
	_, err = svc.UpdateCustomer(ctx, other.ID, UpdateCustomerRequest{Status: &inactive})
	require.NoError(t, err)

	list, _, err := svc.ListCustomers(ctx, ListFilter{Status: PartyActive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, active.ID, list[0].ID)

	_, _, err = svc.ListCustomers(ctx, ListFilter{Status: PartyStatus("bogus")})
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestDeleteSupplier(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	supplier, err := svc.CreateSupplier(ctx, CreateSupplierRequest{Name: "B", Phone: "2"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSupplier(ctx, supplier.ID))
	require.Empty(t, repo.suppliers)
	require.ErrorIs(t, svc.DeleteSupplier(ctx, supplier.ID), shared.ErrNotFound)
}
