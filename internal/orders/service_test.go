package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type memoryOrdersRepo struct {
	orders map[string]Order
}

func newMemoryOrdersRepo() *memoryOrdersRepo {
	return &memoryOrdersRepo{orders: make(map[string]Order)}
}

func (m *memoryOrdersRepo) Create(ctx context.Context, order *Order) error {
	m.orders[order.ID] = *order
	return nil
}

func (m *memoryOrdersRepo) Get(ctx context.Context, id string) (*Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &order, nil
}

func (m *memoryOrdersRepo) List(ctx context.Context, filter ListFilter) ([]Order, int, error) {
	var result []Order
	for _, order := range m.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(order.CustomerName), needle) &&
				!strings.Contains(strings.ToLower(order.ID), needle) {
				continue
			}
		}
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memoryOrdersRepo) Update(ctx context.Context, order *Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return shared.ErrNotFound
	}
	m.orders[order.ID] = *order
	return nil
}

func (m *memoryOrdersRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

type stubSequencer struct {
	n int64
}

func (s *stubSequencer) Next(ctx context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%03d", prefix, s.n), nil
}

func newTestService() (*Service, *memoryOrdersRepo) {
	repo := newMemoryOrdersRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, &stubSequencer{}, logger), repo
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	require.Equal(t, "ORD-001", first.ID)
	require.Equal(t, StatusPending, first.Status)

	second, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	require.Equal(t, "ORD-002", second.ID)
}

func TestCreateComputesTotal(t *testing.T) {
	svc, _ := newTestService()

	req := validRequest()
	req.Items = []OrderItemRequest{
		{Name: "Interior White 20L", Quantity: 50, Price: 120, Unit: "bucket"},
		{Name: "Exterior Grey 20L", Quantity: 30, Price: 150, Unit: "bucket"},
	}
	order, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.InDelta(t, 10500, order.Total(), 0.001)
}

func TestCreateValidation(t *testing.T) {
	svc, repo := newTestService()

	req := CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "", Price: 0}},
	}
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "customerName")
	require.Contains(t, fields, "customerPhone")
	require.Contains(t, fields, "items[0].name")
	require.Contains(t, fields, "items[0].price")
	require.Empty(t, repo.orders)
}

func TestPaymentStatusDerivation(t *testing.T) {
	require.Equal(t, PaymentUnpaid, DerivePaymentStatus(0, 10500))
	require.Equal(t, PaymentPartial, DerivePaymentStatus(5000, 10500))
	require.Equal(t, PaymentPaid, DerivePaymentStatus(10500, 10500))
	require.Equal(t, PaymentUnpaid, DerivePaymentStatus(0, 0))
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)

	// The table currently permits every documented pair, including
	// moving a completed order back to pending.
	updated, err = svc.UpdateStatus(ctx, order.ID, StatusPending)
	require.NoError(t, err)
	require.Equal(t, StatusPending, updated.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, Status("shipped"))
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransitionTableCoversAllStatuses(t *testing.T) {
	statuses := []Status{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}
	require.Len(t, Transitions, len(statuses))
	for _, from := range statuses {
		require.Len(t, Transitions[from], len(statuses))
		for _, to := range statuses {
			require.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	require.False(t, CanTransition(StatusPending, Status("archived")))
}

func TestUpdateMergesFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	name := "Al Noor Trading"
	updated, err := svc.Update(ctx, order.ID, UpdateOrderRequest{CustomerName: &name})
	require.NoError(t, err)
	require.Equal(t, "Al Noor Trading", updated.CustomerName)
	require.Equal(t, order.CustomerPhone, updated.CustomerPhone)
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	order, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, order.ID))
	require.Empty(t, repo.orders)
	require.ErrorIs(t, svc.Delete(ctx, order.ID), shared.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	second, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, second.ID, StatusProcessing)
	require.NoError(t, err)

	pending, _, err := svc.List(ctx, ListFilter{Status: StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, first.ID, pending[0].ID)

	_, _, err = svc.List(ctx, ListFilter{Status: Status("bogus")})
	require.ErrorIs(t, err, ErrUnknownStatus)

	byID, _, err := svc.List(ctx, ListFilter{Search: first.ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "Eastern Paints Est.",
		CustomerPhone: "0551234567",
		Items: []OrderItemRequest{
			{Name: "Interior White 20L", Quantity: 10, Price: 120, Unit: "bucket"},
		},
	}
}
