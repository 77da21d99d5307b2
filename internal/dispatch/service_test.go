package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type memoryDispatchRepo struct {
	deliveries map[string]Delivery
	drivers    map[int64]Driver
	nextDriver int64
}

func newMemoryDispatchRepo() *memoryDispatchRepo {
	return &memoryDispatchRepo{
		deliveries: make(map[string]Delivery),
		drivers:    make(map[int64]Driver),
	}
}

func (m *memoryDispatchRepo) CreateDelivery(ctx context.Context, delivery *Delivery) error {
	m.deliveries[delivery.ID] = *delivery
	return nil
}

func (m *memoryDispatchRepo) GetDelivery(ctx context.Context, id string) (*Delivery, error) {
	delivery, ok := m.deliveries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &delivery, nil
}

func (m *memoryDispatchRepo) ListDeliveries(ctx context.Context, filter ListFilter) ([]Delivery, int, error) {
	var result []Delivery
	for _, delivery := range m.deliveries {
		if filter.Status != "" && delivery.Status != filter.Status {
			continue
		}
		result = append(result, delivery)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memoryDispatchRepo) SaveAssignment(ctx context.Context, delivery *Delivery, driverID int64) error {
	m.deliveries[delivery.ID] = *delivery
	driver := m.drivers[driverID]
	driver.Available = false
	m.drivers[driverID] = driver
	return nil
}

func (m *memoryDispatchRepo) SaveStatus(ctx context.Context, delivery *Delivery, releaseDriverID *int64) error {
	m.deliveries[delivery.ID] = *delivery
	if releaseDriverID != nil {
		driver := m.drivers[*releaseDriverID]
		driver.Available = true
		m.drivers[*releaseDriverID] = driver
	}
	return nil
}

func (m *memoryDispatchRepo) DeleteDelivery(ctx context.Context, id string, releaseDriverID *int64) error {
	if _, ok := m.deliveries[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.deliveries, id)
	if releaseDriverID != nil {
		driver := m.drivers[*releaseDriverID]
		driver.Available = true
		m.drivers[*releaseDriverID] = driver
	}
	return nil
}

func (m *memoryDispatchRepo) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	for _, delivery := range m.deliveries {
		switch delivery.Status {
		case StatusPending:
			stats.Pending++
		case StatusAssigned:
			stats.Assigned++
		case StatusInTransit:
			stats.InTransit++
		case StatusDelivered:
			stats.Delivered++
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func (m *memoryDispatchRepo) CreateDriver(ctx context.Context, driver *Driver) error {
	m.nextDriver++
	driver.ID = m.nextDriver
	m.drivers[driver.ID] = *driver
	return nil
}

func (m *memoryDispatchRepo) GetDriver(ctx context.Context, id int64) (*Driver, error) {
	driver, ok := m.drivers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &driver, nil
}

func (m *memoryDispatchRepo) ListDrivers(ctx context.Context, onlyAvailable bool) ([]Driver, error) {
	var result []Driver
	for _, driver := range m.drivers {
		if onlyAvailable && !driver.Available {
			continue
		}
		result = append(result, driver)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type stubSequencer struct {
	n int64
}

func (s *stubSequencer) Next(ctx context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%03d", prefix, s.n), nil
}

func newTestService() (*Service, *memoryDispatchRepo) {
	repo := newMemoryDispatchRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, &stubSequencer{}, logger), repo
}

func seedDeliveryAndDriver(t *testing.T, svc *Service) (*Delivery, *Driver) {
	t.Helper()
	ctx := context.Background()
	delivery, err := svc.CreateDelivery(ctx, CreateDeliveryRequest{
		OrderID:  "ORD-001",
		Customer: "Eastern Paints Est.",
		Address:  "Industrial Area, Dammam",
	})
	require.NoError(t, err)
	driver, err := svc.CreateDriver(ctx, CreateDriverRequest{
		Name: "Saeed", Phone: "0509876543", Vehicle: "TRK-114",
	})
	require.NoError(t, err)
	require.True(t, driver.Available)
	return delivery, driver
}

func TestAssignMarksDriverUnavailable(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	delivery, driver := seedDeliveryAndDriver(t, svc)

	assigned, err := svc.Assign(ctx, delivery.ID, AssignRequest{
		DriverID: driver.ID, Date: "2025-06-20", Time: "10:00",
	})
	require.NoError(t, err)
	require.Equal(t, StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.DriverID)
	require.Equal(t, driver.ID, *assigned.DriverID)
	require.Equal(t, driver.Name, assigned.DriverName)
	require.NotNil(t, assigned.AssignedAt)

	require.False(t, repo.drivers[driver.ID].Available)
}

func TestAssignValidation(t *testing.T) {
	svc, _ := newTestService()
	delivery, _ := seedDeliveryAndDriver(t, svc)

	_, err := svc.Assign(context.Background(), delivery.ID, AssignRequest{})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "driverId")
	require.Contains(t, fields, "date")
	require.Contains(t, fields, "time")
}

func TestAssignRejectsBusyDriver(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	first, driver := seedDeliveryAndDriver(t, svc)

	second, err := svc.CreateDelivery(ctx, CreateDeliveryRequest{
		Customer: "Al Noor Trading", Address: "King Fahd Road, Riyadh",
	})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, first.ID, AssignRequest{DriverID: driver.ID, Date: "2025-06-20", Time: "10:00"})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, second.ID, AssignRequest{DriverID: driver.ID, Date: "2025-06-20", Time: "14:00"})
	require.ErrorIs(t, err, ErrDriverUnavailable)
}

func TestDeliveredReleasesDriverAndStamps(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	delivery, driver := seedDeliveryAndDriver(t, svc)

	_, err := svc.Assign(ctx, delivery.ID, AssignRequest{DriverID: driver.ID, Date: "2025-06-20", Time: "10:00"})
	require.NoError(t, err)

	inTransit, err := svc.UpdateStatus(ctx, delivery.ID, StatusInTransit)
	require.NoError(t, err)
	require.False(t, repo.drivers[driver.ID].Available, "in_transit still occupies the driver")
	require.Nil(t, inTransit.DeliveredAt)

	delivered, err := svc.UpdateStatus(ctx, delivery.ID, StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
	require.True(t, repo.drivers[driver.ID].Available)
}

func TestFailedReleasesDriver(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	delivery, driver := seedDeliveryAndDriver(t, svc)

	_, err := svc.Assign(ctx, delivery.ID, AssignRequest{DriverID: driver.ID, Date: "2025-06-20", Time: "10:00"})
	require.NoError(t, err)

	failed, err := svc.UpdateStatus(ctx, delivery.ID, StatusFailed)
	require.NoError(t, err)
	require.Nil(t, failed.DeliveredAt)
	require.True(t, repo.drivers[driver.ID].Available)
}

func TestDriverReleasedByIDNotName(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	delivery, driver := seedDeliveryAndDriver(t, svc)

	// A second driver with the same name must be untouched by release.
	twin, err := svc.CreateDriver(ctx, CreateDriverRequest{
		Name: driver.Name, Phone: "0501112222", Vehicle: "TRK-115",
	})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, delivery.ID, AssignRequest{DriverID: driver.ID, Date: "2025-06-20", Time: "10:00"})
	require.NoError(t, err)

	otherDelivery, err := svc.CreateDelivery(ctx, CreateDeliveryRequest{
		Customer: "Gulf Coatings", Address: "Port Road, Jubail",
	})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, otherDelivery.ID, AssignRequest{DriverID: twin.ID, Date: "2025-06-21", Time: "09:00"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, delivery.ID, StatusDelivered)
	require.NoError(t, err)

	require.True(t, repo.drivers[driver.ID].Available)
	require.False(t, repo.drivers[twin.ID].Available, "same-named driver must stay busy")
}

func TestUpdateStatusUnknown(t *testing.T) {
	svc, _ := newTestService()
	delivery, _ := seedDeliveryAndDriver(t, svc)

	_, err := svc.UpdateStatus(context.Background(), delivery.ID, Status("lost"))
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransitionTableCoversAllStatuses(t *testing.T) {
	statuses := []Status{StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusFailed}
	require.Len(t, Transitions, len(statuses))
	for _, from := range statuses {
		for _, to := range statuses {
			require.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	require.False(t, CanTransition(StatusPending, Status("archived")))
}

func TestDeleteReleasesHeldDriver(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	delivery, driver := seedDeliveryAndDriver(t, svc)

	_, err := svc.Assign(ctx, delivery.ID, AssignRequest{DriverID: driver.ID, Date: "2025-06-20", Time: "10:00"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDelivery(ctx, delivery.ID))
	require.True(t, repo.drivers[driver.ID].Available)
}

func TestStats(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	delivery, driver := seedDeliveryAndDriver(t, svc)

	_, err := svc.CreateDelivery(ctx, CreateDeliveryRequest{Customer: "B", Address: "Somewhere"})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, delivery.ID, AssignRequest{DriverID: driver.ID, Date: "2025-06-20", Time: "10:00"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pending)
	require.Equal(t, 1, stats.Assigned)
}
