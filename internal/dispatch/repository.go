package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcp-erp/hcp-erp/internal/platform/db"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Repository defines persistence operations for dispatch.
type Repository interface {
	CreateDelivery(ctx context.Context, delivery *Delivery) error
	GetDelivery(ctx context.Context, id string) (*Delivery, error)
	ListDeliveries(ctx context.Context, filter ListFilter) ([]Delivery, int, error)
	SaveAssignment(ctx context.Context, delivery *Delivery, driverID int64) error
	SaveStatus(ctx context.Context, delivery *Delivery, releaseDriverID *int64) error
	DeleteDelivery(ctx context.Context, id string, releaseDriverID *int64) error
	Stats(ctx context.Context) (*Stats, error)

	CreateDriver(ctx context.Context, driver *Driver) error
	GetDriver(ctx context.Context, id int64) (*Driver, error)
	ListDrivers(ctx context.Context, onlyAvailable bool) ([]Driver, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const deliveryColumns = `id, order_id, customer, customer_phone, address, scheduled_date, scheduled_time,
	status, driver_id, driver_name, driver_phone, driver_vehicle, notes, items,
	assigned_at, delivered_at, created_at, updated_at`

// CreateDelivery inserts a new delivery row.
func (r *PGRepository) CreateDelivery(ctx context.Context, delivery *Delivery) error {
	const query = `
		INSERT INTO deliveries (id, order_id, customer, customer_phone, address, scheduled_date, scheduled_time,
			status, driver_id, driver_name, driver_phone, driver_vehicle, notes, items,
			assigned_at, delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		delivery.ID,
		delivery.OrderID,
		delivery.Customer,
		delivery.CustomerPhone,
		delivery.Address,
		delivery.ScheduledDate,
		delivery.ScheduledTime,
		delivery.Status,
		delivery.DriverID,
		delivery.DriverName,
		delivery.DriverPhone,
		delivery.DriverVehicle,
		delivery.Notes,
		delivery.Items,
		delivery.AssignedAt,
		delivery.DeliveredAt,
	).Scan(&delivery.CreatedAt, &delivery.UpdatedAt)
}

// GetDelivery retrieves a single delivery.
func (r *PGRepository) GetDelivery(ctx context.Context, id string) (*Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	delivery, err := scanDelivery(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return delivery, nil
}

// ListDeliveries returns matching deliveries newest-first.
func (r *PGRepository) ListDeliveries(ctx context.Context, filter ListFilter) ([]Delivery, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("(lower(customer) LIKE $%d OR lower(id) LIKE $%d OR lower(order_id) LIKE $%d)", len(args), len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM deliveries WHERE `+cond, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		deliveryColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Delivery
	for rows.Next() {
		delivery, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *delivery)
	}
	return result, total, rows.Err()
}

// SaveAssignment writes the delivery and flips the driver to
// unavailable in one transaction.
func (r *PGRepository) SaveAssignment(ctx context.Context, delivery *Delivery, driverID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateDelivery(ctx, tx, delivery); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE drivers SET available = FALSE, updated_at = now() WHERE id = $1`, driverID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// SaveStatus writes the delivery and, when a driver is being released,
// flips that driver back to available in the same transaction.
func (r *PGRepository) SaveStatus(ctx context.Context, delivery *Delivery, releaseDriverID *int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateDelivery(ctx, tx, delivery); err != nil {
			return err
		}
		if releaseDriverID != nil {
			if _, err := tx.Exec(ctx, `UPDATE drivers SET available = TRUE, updated_at = now() WHERE id = $1`, *releaseDriverID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteDelivery removes a delivery, releasing its driver if held.
func (r *PGRepository) DeleteDelivery(ctx context.Context, id string, releaseDriverID *int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if releaseDriverID != nil {
			if _, err := tx.Exec(ctx, `UPDATE drivers SET available = TRUE, updated_at = now() WHERE id = $1`, *releaseDriverID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats counts deliveries per status.
func (r *PGRepository) Stats(ctx context.Context) (*Stats, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM deliveries GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		switch status {
		case StatusPending:
			stats.Pending = count
		case StatusAssigned:
			stats.Assigned = count
		case StatusInTransit:
			stats.InTransit = count
		case StatusDelivered:
			stats.Delivered = count
		case StatusFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}

// CreateDriver inserts a new driver row.
func (r *PGRepository) CreateDriver(ctx context.Context, driver *Driver) error {
	const query = `
		INSERT INTO drivers (name, phone, vehicle, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		driver.Name,
		driver.Phone,
		driver.Vehicle,
		driver.Available,
	).Scan(&driver.ID, &driver.CreatedAt, &driver.UpdatedAt)
}

// GetDriver retrieves a single driver.
func (r *PGRepository) GetDriver(ctx context.Context, id int64) (*Driver, error) {
	const query = `SELECT id, name, phone, vehicle, available, created_at, updated_at FROM drivers WHERE id = $1`
	var driver Driver
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Vehicle,
		&driver.Available,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// ListDrivers returns drivers ordered by id.
func (r *PGRepository) ListDrivers(ctx context.Context, onlyAvailable bool) ([]Driver, error) {
	query := `SELECT id, name, phone, vehicle, available, created_at, updated_at FROM drivers`
	if onlyAvailable {
		query += ` WHERE available`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Driver
	for rows.Next() {
		var driver Driver
		if err := rows.Scan(&driver.ID, &driver.Name, &driver.Phone, &driver.Vehicle, &driver.Available, &driver.CreatedAt, &driver.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, driver)
	}
	return result, rows.Err()
}

func updateDelivery(ctx context.Context, tx pgx.Tx, delivery *Delivery) error {
	const query = `
		UPDATE deliveries
		SET customer = $2, customer_phone = $3, address = $4, scheduled_date = $5, scheduled_time = $6,
		    status = $7, driver_id = $8, driver_name = $9, driver_phone = $10, driver_vehicle = $11,
		    notes = $12, items = $13, assigned_at = $14, delivered_at = $15, updated_at = now()
		WHERE id = $1`
	tag, err := tx.Exec(ctx, query,
		delivery.ID,
		delivery.Customer,
		delivery.CustomerPhone,
		delivery.Address,
		delivery.ScheduledDate,
		delivery.ScheduledTime,
		delivery.Status,
		delivery.DriverID,
		delivery.DriverName,
		delivery.DriverPhone,
		delivery.DriverVehicle,
		delivery.Notes,
		delivery.Items,
		delivery.AssignedAt,
		delivery.DeliveredAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanDelivery(row pgx.Row) (*Delivery, error) {
	var delivery Delivery
	err := row.Scan(
		&delivery.ID,
		&delivery.OrderID,
		&delivery.Customer,
		&delivery.CustomerPhone,
		&delivery.Address,
		&delivery.ScheduledDate,
		&delivery.ScheduledTime,
		&delivery.Status,
		&delivery.DriverID,
		&delivery.DriverName,
		&delivery.DriverPhone,
		&delivery.DriverVehicle,
		&delivery.Notes,
		&delivery.Items,
		&delivery.AssignedAt,
		&delivery.DeliveredAt,
		&delivery.CreatedAt,
		&delivery.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

var _ Repository = (*PGRepository)(nil)
