package billing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type memoryBillingRepo struct {
	invoices map[string]Invoice
}

func newMemoryBillingRepo() *memoryBillingRepo {
	return &memoryBillingRepo{invoices: make(map[string]Invoice)}
}

func (m *memoryBillingRepo) Create(ctx context.Context, invoice *Invoice) error {
	m.invoices[invoice.ID] = *invoice
	return nil
}

func (m *memoryBillingRepo) Get(ctx context.Context, id string) (*Invoice, error) {
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := invoice
	clone.Payments = append([]Payment(nil), invoice.Payments...)
	return &clone, nil
}

func (m *memoryBillingRepo) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	var result []Invoice
	for _, invoice := range m.invoices {
		result = append(result, invoice)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memoryBillingRepo) SavePayment(ctx context.Context, invoice *Invoice, payment Payment) error {
	if _, ok := m.invoices[invoice.ID]; !ok {
		return shared.ErrNotFound
	}
	m.invoices[invoice.ID] = *invoice
	return nil
}

func (m *memoryBillingRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

type stubSequencer struct {
	n int64
}

func (s *stubSequencer) Next(ctx context.Context, prefix string) (string, error) {
	s.n++
	return fmt.Sprintf("%s-%03d", prefix, s.n), nil
}

type memoryLedger struct {
	receipts []Receipt
}

func (m *memoryLedger) RecordReceipt(ctx context.Context, receipt Receipt) error {
	m.receipts = append(m.receipts, receipt)
	return nil
}

func newTestService() (*Service, *memoryBillingRepo, *memoryLedger) {
	repo := newMemoryBillingRepo()
	ledger := &memoryLedger{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, &stubSequencer{}, ledger, logger), repo, ledger
}

func createInvoice(t *testing.T, svc *Service, amount float64) *Invoice {
	t.Helper()
	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		OrderID:  "ORD-001",
		Customer: "Eastern Paints Est.",
		Amount:   amount,
	})
	require.NoError(t, err)
	return invoice
}

func TestRecordPaymentTransitionsStatus(t *testing.T) {
	svc, _, ledger := newTestService()
	ctx := context.Background()

	invoice := createInvoice(t, svc, 10500)
	require.Equal(t, StatusUnpaid, invoice.StatusAt(time.Now()))

	updated, err := svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 5000, Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, 5000.0, updated.PaidAmount)
	require.Equal(t, StatusPartial, updated.StatusAt(time.Now()))

	updated, err = svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 5500, Method: MethodBank})
	require.NoError(t, err)
	require.Equal(t, 10500.0, updated.PaidAmount)
	require.Equal(t, StatusPaid, updated.StatusAt(time.Now()))

	// Fully paid: one more riyal must be rejected.
	_, err = svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 1, Method: MethodCash})
	require.ErrorIs(t, err, ErrOverpayment)

	require.Len(t, ledger.receipts, 2)
	require.Equal(t, invoice.ID, ledger.receipts[0].InvoiceID)
}

func TestRecordPaymentRejectsWithoutMutation(t *testing.T) {
	svc, repo, ledger := newTestService()
	ctx := context.Background()

	invoice := createInvoice(t, svc, 1000)

	_, err := svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 0, Method: MethodCash})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: -50, Method: MethodCash})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 1001, Method: MethodCash})
	require.ErrorIs(t, err, ErrOverpayment)

	_, err = svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 100, Method: Method("crypto")})
	require.ErrorIs(t, err, ErrInvalidMethod)

	stored := repo.invoices[invoice.ID]
	require.Zero(t, stored.PaidAmount)
	require.Empty(t, stored.Payments)
	require.Empty(t, ledger.receipts)
}

func TestPaidAmountMatchesPaymentSum(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	invoice := createInvoice(t, svc, 5000)
	for _, amount := range []float64{1200, 800, 2000, 1000} {
		_, err := svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: amount, Method: MethodCash})
		require.NoError(t, err)
	}

	stored := repo.invoices[invoice.ID]
	var sum float64
	for _, payment := range stored.Payments {
		sum += payment.Amount
	}
	require.Equal(t, stored.PaidAmount, sum)
	require.LessOrEqual(t, stored.PaidAmount, stored.Amount)
}

func TestReferenceDefaultsToTimestampToken(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	invoice := createInvoice(t, svc, 1000)
	_, err := svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 100, Method: MethodCash})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, invoice.ID, RecordPaymentRequest{Amount: 100, Method: MethodBank, Reference: "TRX-9"})
	require.NoError(t, err)

	stored := repo.invoices[invoice.ID]
	require.Regexp(t, `^PAY-\d+$`, stored.Payments[0].Reference)
	require.Equal(t, "TRX-9", stored.Payments[1].Reference)
}

func TestStatusDerivation(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 10)

	require.Equal(t, StatusUnpaid, DeriveStatus(0, 1000, future, now))
	require.Equal(t, StatusOverdue, DeriveStatus(0, 1000, past, now))
	require.Equal(t, StatusPartial, DeriveStatus(500, 1000, past, now))
	require.Equal(t, StatusPaid, DeriveStatus(1000, 1000, past, now))
}

func TestOverdueListing(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -5)
	overdue, err := svc.Create(ctx, CreateInvoiceRequest{Customer: "Late Co.", Amount: 1000, DueDate: &past})
	require.NoError(t, err)
	_ = createInvoice(t, svc, 2000)

	list, err := svc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, overdue.ID, list[0].ID)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first := createInvoice(t, svc, 10500)
	_ = createInvoice(t, svc, 2000)
	_, err := svc.RecordPayment(ctx, first.ID, RecordPaymentRequest{Amount: 5000, Method: MethodCash})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 12500.0, stats.TotalInvoiced)
	require.Equal(t, 5000.0, stats.TotalCollected)
	require.Equal(t, 7500.0, stats.TotalPending)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{Amount: 0})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "customer")
	require.Contains(t, fields, "amount")
}
