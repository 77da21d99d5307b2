package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Repository defines persistence operations for the ledger.
type Repository interface {
	Create(ctx context.Context, record *Collection) error
	Get(ctx context.Context, id string) (*Collection, error)
	List(ctx context.Context, filter ListFilter) ([]Collection, int, error)
	ListAll(ctx context.Context) ([]Collection, error)
	SaveStatus(ctx context.Context, record *Collection) error
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const collectionColumns = `id, date, collector, customer, invoice_id, amount, method, reference, status, notes,
	created_at, updated_at`

// Create inserts a new ledger row.
func (r *PGRepository) Create(ctx context.Context, record *Collection) error {
	const query = `
		INSERT INTO collections (id, date, collector, customer, invoice_id, amount, method, reference, status,
			notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		record.ID,
		record.Date,
		record.Collector,
		record.Customer,
		record.InvoiceID,
		record.Amount,
		record.Method,
		record.Reference,
		record.Status,
		record.Notes,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
}

// Get retrieves a single ledger row.
func (r *PGRepository) Get(ctx context.Context, id string) (*Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE id = $1`
	record, err := scanCollection(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// List returns matching ledger rows with the total match count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Collection, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf(
			"(lower(customer) LIKE $%d OR lower(collector) LIKE $%d OR lower(id) LIKE $%d OR lower(invoice_id) LIKE $%d)",
			len(args), len(args), len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Method != "" {
		args = append(args, filter.Method)
		where = append(where, fmt.Sprintf("method = $%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM collections WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	size := filter.Size
	if size <= 0 {
		size = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, size, (page-1)*size)
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE ` + cond +
		fmt.Sprintf(` ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Collection
	for rows.Next() {
		record, err := scanCollection(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *record)
	}
	return result, total, rows.Err()
}

// ListAll loads the whole ledger for aggregate computation.
func (r *PGRepository) ListAll(ctx context.Context) ([]Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections ORDER BY date DESC, id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Collection
	for rows.Next() {
		record, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

// SaveStatus persists a status change.
func (r *PGRepository) SaveStatus(ctx context.Context, record *Collection) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE collections SET status = $2, updated_at = now() WHERE id = $1`,
		record.ID, record.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a ledger row.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCollection(row pgx.Row) (*Collection, error) {
	var record Collection
	err := row.Scan(
		&record.ID,
		&record.Date,
		&record.Collector,
		&record.Customer,
		&record.InvoiceID,
		&record.Amount,
		&record.Method,
		&record.Reference,
		&record.Status,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

var _ Repository = (*PGRepository)(nil)
