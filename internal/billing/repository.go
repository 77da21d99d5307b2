package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcp-erp/hcp-erp/internal/platform/db"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Repository defines persistence operations for billing.
type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, int, error)
	SavePayment(ctx context.Context, invoice *Invoice, payment Payment) error
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL. Payments are
// stored inline as a JSONB column so invoice and receipts always move
// together.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const invoiceColumns = `id, order_id, customer, amount, paid_amount, payments, issue_date, due_date, created_at, updated_at`

// Create inserts a new invoice row.
func (r *PGRepository) Create(ctx context.Context, invoice *Invoice) error {
	payments, err := json.Marshal(paymentsOrEmpty(invoice.Payments))
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}
	const query = `
		INSERT INTO invoices (id, order_id, customer, amount, paid_amount, payments, issue_date, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		invoice.ID,
		invoice.OrderID,
		invoice.Customer,
		invoice.Amount,
		invoice.PaidAmount,
		payments,
		invoice.IssueDate,
		invoice.DueDate,
	).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
}

// Get retrieves a single invoice.
func (r *PGRepository) Get(ctx context.Context, id string) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return invoice, nil
}

// List returns matching invoices newest-first. A non-positive Size
// returns every match; status filtering happens in the service because
// status is derived.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(customer) LIKE $%d OR lower(id) LIKE $%d OR lower(order_id) LIKE $%d)", len(args), len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM invoices WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + cond + ` ORDER BY created_at DESC`
	if filter.Size > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		args = append(args, filter.Size, (page-1)*filter.Size)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *invoice)
	}
	return result, total, rows.Err()
}

// SavePayment persists the invoice with its appended payment in one
// transaction, guarding the paid-amount invariant at the row level too.
func (r *PGRepository) SavePayment(ctx context.Context, invoice *Invoice, payment Payment) error {
	payments, err := json.Marshal(paymentsOrEmpty(invoice.Payments))
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			UPDATE invoices
			SET paid_amount = $2, payments = $3, updated_at = now()
			WHERE id = $1 AND $2 <= amount`
		tag, err := tx.Exec(ctx, query, invoice.ID, invoice.PaidAmount, payments)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Delete removes an invoice row.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		invoice  Invoice
		payments []byte
	)
	err := row.Scan(
		&invoice.ID,
		&invoice.OrderID,
		&invoice.Customer,
		&invoice.Amount,
		&invoice.PaidAmount,
		&payments,
		&invoice.IssueDate,
		&invoice.DueDate,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(payments) > 0 {
		if err := json.Unmarshal(payments, &invoice.Payments); err != nil {
			return nil, fmt.Errorf("unmarshal payments: %w", err)
		}
	}
	return &invoice, nil
}

func paymentsOrEmpty(payments []Payment) []Payment {
	if payments == nil {
		return []Payment{}
	}
	return payments
}

var _ Repository = (*PGRepository)(nil)
