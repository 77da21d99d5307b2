package collections

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

	"github.com/hcp-erp/hcp-erp/internal/billing"
	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type memoryCollectionsRepo struct {
	records map[string]Collection
}

func newMemoryCollectionsRepo() *memoryCollectionsRepo {
	return &memoryCollectionsRepo{records: make(map[string]Collection)}
}

func (m *memoryCollectionsRepo) Create(ctx context.Context, record *Collection) error {
	m.records[record.ID] = *record
	return nil
}

func (m *memoryCollectionsRepo) Get(ctx context.Context, id string) (*Collection, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &record, nil
}

func (m *memoryCollectionsRepo) List(ctx context.Context, filter ListFilter) ([]Collection, int, error) {
	var result []Collection
	for _, record := range m.records {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.Method != "" && record.Method != filter.Method {
			continue
		}
		if filter.Since != nil && record.Date.Before(*filter.Since) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(record.Customer), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, record)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memoryCollectionsRepo) ListAll(ctx context.Context) ([]Collection, error) {
	result := make([]Collection, 0, len(m.records))
	for _, record := range m.records {
		result = append(result, record)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memoryCollectionsRepo) SaveStatus(ctx context.Context, record *Collection) error {
	stored, ok := m.records[record.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Status = record.Status
	m.records[record.ID] = stored
	return nil
}

func (m *memoryCollectionsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

type stubSequencer struct {
	n int64
}

func (s *stubSequencer) Next(ctx context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%03d", prefix, s.n), nil
}

func newTestService(now time.Time) (*Service, *memoryCollectionsRepo) {
	repo := newMemoryCollectionsRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, &stubSequencer{}, logger)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

// Ledger mirroring the sample data the back office ships with.
func seedLedger(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	fixtures := []CreateRequest{
		{Date: day("2024-01-15"), Collector: "Ahmed Mohammed", Customer: "Modern Construction Co.", InvoiceID: "INV-001", Amount: 5000, Method: MethodCash, Reference: "CASH-001"},
		{Date: day("2024-01-14"), Collector: "Mohammed Ali", Customer: "Alinshaat Est.", InvoiceID: "INV-002", Amount: 4500, Method: MethodBank, Reference: "TRF-001"},
		{Date: day("2024-01-13"), Collector: "Saad Ahmed", Customer: "Realty Development Co.", InvoiceID: "INV-003", Amount: 2500, Method: MethodCheck, Reference: "CHK-001", Status: StatusPending},
		{Date: day("2024-01-12"), Collector: "Ali Hassan", Customer: "Gulf Contracting", InvoiceID: "INV-004", Amount: 8000, Method: MethodWallet, Reference: "WAL-001"},
	}
	for _, req := range fixtures {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	svc, _ := newTestService(day("2024-01-15"))
	seedLedger(t, svc)

	record, err := svc.Get(context.Background(), "COL-004")
	require.NoError(t, err)
	require.Equal(t, "Ali Hassan", record.Collector)
	require.Equal(t, StatusCompleted, record.Status)
}

func TestCreateValidation(t *testing.T) {
	svc, repo := newTestService(day("2024-01-15"))

	_, err := svc.Create(context.Background(), CreateRequest{Amount: -10, Method: Method("crypto")})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "collector")
	require.Contains(t, fields, "customer")
	require.Contains(t, fields, "amount")
	require.Contains(t, fields, "method")
	require.Empty(t, repo.records)
}

func TestSummaryStats(t *testing.T) {
	svc, _ := newTestService(day("2024-01-15"))
	seedLedger(t, svc)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Equal(t, 20000.0, summary.Stats.Total)
	require.Equal(t, 5000.0, summary.Stats.Today)
	require.Equal(t, 17500.0, summary.Stats.ThisWeek)
	require.Equal(t, 17500.0, summary.Stats.ThisMonth)
	require.Equal(t, 2500.0, summary.Stats.Pending)
	require.Equal(t, 3, summary.Stats.CompletedCount)
	require.Equal(t, 1, summary.Stats.PendingCount)
}

func TestSummaryTopCollectors(t *testing.T) {
	svc, _ := newTestService(day("2024-01-15"))
	seedLedger(t, svc)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Equal(t, []CollectorTotal{
		{Name: "Ali Hassan", Amount: 8000, Count: 1},
		{Name: "Ahmed Mohammed", Amount: 5000, Count: 1},
		{Name: "Mohammed Ali", Amount: 4500, Count: 1},
	}, summary.Collectors)
}

func TestTopCollectorsCappedAtFive(t *testing.T) {
	var records []Collection
	for i := 0; i < 8; i++ {
		records = append(records, Collection{
			Collector: fmt.Sprintf("collector-%d", i),
			Amount:    float64(100 * (i + 1)),
			Status:    StatusCompleted,
		})
	}

	top := TopCollectors(records)
	require.Len(t, top, 5)
	require.Equal(t, "collector-7", top[0].Name)
	require.Equal(t, 800.0, top[0].Amount)
	require.Equal(t, "collector-3", top[4].Name)
}

func TestSummaryMethodTotalsSkipPending(t *testing.T) {
	svc, _ := newTestService(day("2024-01-15"))
	seedLedger(t, svc)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Equal(t, []MethodTotal{
		{Method: MethodCash, Amount: 5000, Count: 1},
		{Method: MethodBank, Amount: 4500, Count: 1},
		{Method: MethodWallet, Amount: 8000, Count: 1},
	}, summary.Methods)
}

func TestRecordReceiptLandsCompleted(t *testing.T) {
	svc, repo := newTestService(day("2024-01-15"))

	err := svc.RecordReceipt(context.Background(), billing.Receipt{
		InvoiceID: "INV-007",
		Customer:  "Gulf Contracting",
		Date:      day("2024-01-15"),
		Amount:    1200,
		Method:    billing.MethodCash,
		Reference: "PAY-1705312800000",
	})
	require.NoError(t, err)

	record, ok := repo.records["COL-001"]
	require.True(t, ok)
	require.Equal(t, StatusCompleted, record.Status)
	require.Equal(t, "system", record.Collector)
	require.Equal(t, "INV-007", record.InvoiceID)
	require.Equal(t, MethodCash, record.Method)
	require.Equal(t, 1200.0, record.Amount)
}

func TestUpdateStatusSettlesPending(t *testing.T) {
	svc, _ := newTestService(day("2024-01-15"))
	seedLedger(t, svc)
	ctx := context.Background()

	record, err := svc.UpdateStatus(ctx, "COL-003", StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, record.Status)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.0, summary.Stats.Pending)
	require.Equal(t, 4, summary.Stats.CompletedCount)

	_, err = svc.UpdateStatus(ctx, "COL-003", Status("void"))
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestListRejectsUnknownFilters(t *testing.T) {
	svc, _ := newTestService(day("2024-01-15"))

	_, _, err := svc.List(context.Background(), ListFilter{Status: Status("bogus")})
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, _, err = svc.List(context.Background(), ListFilter{Method: Method("crypto")})
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService(day("2024-01-15"))
	seedLedger(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "COL-002"))
	require.NotContains(t, repo.records, "COL-002")
	require.ErrorIs(t, svc.Delete(ctx, "COL-002"), shared.ErrNotFound)
}
