package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Repository defines persistence operations for customers and suppliers.
type Repository interface {
	CreateCustomer(ctx context.Context, customer *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) ([]Customer, int, error)
	UpdateCustomer(ctx context.Context, customer *Customer) error
	DeleteCustomer(ctx context.Context, id string) error

	CreateSupplier(ctx context.Context, supplier *Supplier) error
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, int, error)
	UpdateSupplier(ctx context.Context, supplier *Supplier) error
	DeleteSupplier(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const customerColumns = `id, name, type, phone, email, address, contact_person, total_orders, total_spent,
	last_order_date, status, notes, created_at, updated_at`

// CreateCustomer inserts a new customer row.
func (r *PGRepository) CreateCustomer(ctx context.Context, customer *Customer) error {
	const query = `
		INSERT INTO customers (id, name, type, phone, email, address, contact_person, total_orders, total_spent,
			last_order_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		customer.ID,
		customer.Name,
		customer.Type,
		customer.Phone,
		customer.Email,
		customer.Address,
		customer.ContactPerson,
		customer.TotalOrders,
		customer.TotalSpent,
		customer.LastOrderDate,
		customer.Status,
		customer.Notes,
	).Scan(&customer.CreatedAt, &customer.UpdatedAt)
}

// GetCustomer retrieves a single customer.
func (r *PGRepository) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

// ListCustomers returns matching customers with the total match count.
func (r *PGRepository) ListCustomers(ctx context.Context, filter ListFilter) ([]Customer, int, error) {
	cond, args := partyFilter(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args, limit := appendPaging(args, filter)
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + cond + ` ORDER BY id` + limit

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *customer)
	}
	return result, total, rows.Err()
}

// UpdateCustomer overwrites the mutable columns of a customer.
func (r *PGRepository) UpdateCustomer(ctx context.Context, customer *Customer) error {
	const query = `
		UPDATE customers
		SET name = $2, type = $3, phone = $4, email = $5, address = $6, contact_person = $7,
		    total_orders = $8, total_spent = $9, last_order_date = $10, status = $11,
		    notes = $12, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.Type,
		customer.Phone,
		customer.Email,
		customer.Address,
		customer.ContactPerson,
		customer.TotalOrders,
		customer.TotalSpent,
		customer.LastOrderDate,
		customer.Status,
		customer.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteCustomer removes a customer row.
func (r *PGRepository) DeleteCustomer(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const supplierColumns = `id, name, phone, email, address, contact_person, products, total_purchases,
	last_purchase_date, payment_terms, status, notes, created_at, updated_at`

// CreateSupplier inserts a new supplier row.
func (r *PGRepository) CreateSupplier(ctx context.Context, supplier *Supplier) error {
	const query = `
		INSERT INTO suppliers (id, name, phone, email, address, contact_person, products, total_purchases,
			last_purchase_date, payment_terms, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		supplier.ID,
		supplier.Name,
		supplier.Phone,
		supplier.Email,
		supplier.Address,
		supplier.ContactPerson,
		supplier.Products,
		supplier.TotalPurchases,
		supplier.LastPurchaseDate,
		supplier.PaymentTerms,
		supplier.Status,
		supplier.Notes,
	).Scan(&supplier.CreatedAt, &supplier.UpdatedAt)
}

// GetSupplier retrieves a single supplier.
func (r *PGRepository) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	supplier, err := scanSupplier(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return supplier, nil
}

// ListSuppliers returns matching suppliers with the total match count.
func (r *PGRepository) ListSuppliers(ctx context.Context, filter ListFilter) ([]Supplier, int, error) {
	cond, args := partyFilter(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM suppliers WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args, limit := appendPaging(args, filter)
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE ` + cond + ` ORDER BY id` + limit

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Supplier
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *supplier)
	}
	return result, total, rows.Err()
}

// UpdateSupplier overwrites the mutable columns of a supplier.
func (r *PGRepository) UpdateSupplier(ctx context.Context, supplier *Supplier) error {
	const query = `
		UPDATE suppliers
		SET name = $2, phone = $3, email = $4, address = $5, contact_person = $6, products = $7,
		    total_purchases = $8, last_purchase_date = $9, payment_terms = $10, status = $11,
		    notes = $12, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		supplier.ID,
		supplier.Name,
		supplier.Phone,
		supplier.Email,
		supplier.Address,
		supplier.ContactPerson,
		supplier.Products,
		supplier.TotalPurchases,
		supplier.LastPurchaseDate,
		supplier.PaymentTerms,
		supplier.Status,
		supplier.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteSupplier removes a supplier row.
func (r *PGRepository) DeleteSupplier(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func partyFilter(filter ListFilter) (string, []any) {
	where := []string{"TRUE"}
	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(name) LIKE $%d OR lower(id) LIKE $%d OR phone LIKE $%d)", len(args), len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	return strings.Join(where, " AND "), args
}

func appendPaging(args []any, filter ListFilter) ([]any, string) {
	size := filter.Size
	if size <= 0 {
		size = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, size, (page-1)*size)
	return args, fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var customer Customer
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Type,
		&customer.Phone,
		&customer.Email,
		&customer.Address,
		&customer.ContactPerson,
		&customer.TotalOrders,
		&customer.TotalSpent,
		&customer.LastOrderDate,
		&customer.Status,
		&customer.Notes,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func scanSupplier(row pgx.Row) (*Supplier, error) {
	var supplier Supplier
	err := row.Scan(
		&supplier.ID,
		&supplier.Name,
		&supplier.Phone,
		&supplier.Email,
		&supplier.Address,
		&supplier.ContactPerson,
		&supplier.Products,
		&supplier.TotalPurchases,
		&supplier.LastPurchaseDate,
		&supplier.PaymentTerms,
		&supplier.Status,
		&supplier.Notes,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

var _ Repository = (*PGRepository)(nil)
