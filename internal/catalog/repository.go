package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Repository defines persistence operations for the catalog.
type Repository interface {
	Create(ctx context.Context, product *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	LowStock(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, product *Product) error
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

const productColumns = `id, name, category, color, size, unit, price, stock, min_stock, supplier, description, created_at, updated_at`

// Create inserts a new product row.
func (r *PGRepository) Create(ctx context.Context, product *Product) error {
	const query = `
		INSERT INTO products (id, name, category, color, size, unit, price, stock, min_stock, supplier, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Category,
		product.Color,
		product.Size,
		product.Unit,
		product.Price,
		product.Stock,
		product.MinStock,
		product.Supplier,
		product.Description,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

// Get retrieves a single product.
func (r *PGRepository) Get(ctx context.Context, id string) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// List returns matching products with the total match count.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(name) LIKE $%d OR lower(id) LIKE $%d)", len(args), len(args)))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		productColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *product)
	}
	return result, total, rows.Err()
}

// LowStock returns products whose stock is at or below the minimum.
func (r *PGRepository) LowStock(ctx context.Context) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock <= min_stock ORDER BY stock, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *product)
	}
	return result, rows.Err()
}

// Update overwrites the mutable columns of a product.
func (r *PGRepository) Update(ctx context.Context, product *Product) error {
	const query = `
		UPDATE products
		SET name = $2, category = $3, color = $4, size = $5, unit = $6,
		    price = $7, stock = $8, min_stock = $9, supplier = $10,
		    description = $11, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Category,
		product.Color,
		product.Size,
		product.Unit,
		product.Price,
		product.Stock,
		product.MinStock,
		product.Supplier,
		product.Description,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a product row.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Color,
		&product.Size,
		&product.Unit,
		&product.Price,
		&product.Stock,
		&product.MinStock,
		&product.Supplier,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

var _ Repository = (*PGRepository)(nil)
