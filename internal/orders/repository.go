package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL. Line items are
// stored as a JSONB column; the total is never persisted.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const orderColumns = `id, customer_name, customer_phone, order_date, delivery_date, items, status, paid_amount, created_at, updated_at`

// Create inserts a new order row.
func (r *PGRepository) Create(ctx context.Context, order *Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	const query = `
		INSERT INTO orders (id, customer_name, customer_phone, order_date, delivery_date, items, status, paid_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		order.ID,
		order.CustomerName,
		order.CustomerPhone,
		order.OrderDate,
		order.DeliveryDate,
		items,
		order.Status,
		order.PaidAmount,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
}

// Get retrieves a single order by document number.
func (r *PGRepository) Get(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// List returns matching orders newest-first with the total match count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Order, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(customer_name) LIKE $%d OR lower(id) LIKE $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *order)
	}
	return result, total, rows.Err()
}

// Update overwrites the mutable columns of an order.
func (r *PGRepository) Update(ctx context.Context, order *Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	const query = `
		UPDATE orders
		SET customer_name = $2, customer_phone = $3, delivery_date = $4,
		    items = $5, status = $6, paid_amount = $7, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		order.ID,
		order.CustomerName,
		order.CustomerPhone,
		order.DeliveryDate,
		items,
		order.Status,
		order.PaidAmount,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an order row.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		order Order
		items []byte
	)
	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.OrderDate,
		&order.DeliveryDate,
		&items,
		&order.Status,
		&order.PaidAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	return &order, nil
}

var _ Repository = (*PGRepository)(nil)
