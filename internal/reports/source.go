package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource computes the raw report figures from the operational tables.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewSource constructs a PostgreSQL source.
func NewSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

// orderTotal expands the items document; order totals are derived, never
// stored.
const orderTotal = `(
	SELECT coalesce(sum((item->>'price')::numeric * coalesce((item->>'quantity')::int, 1)), 0)
	FROM jsonb_array_elements(o.items) item
)`

// MonthlySales groups order revenue, order counts and distinct buyers
// per calendar month.
func (s *PGSource) MonthlySales(ctx context.Context, from, to time.Time) ([]MonthlySales, error) {
	query := `
		SELECT to_char(date_trunc('month', o.created_at), 'FMMonth') AS month,
		       coalesce(sum(` + orderTotal + `), 0) AS sales,
		       count(*) AS orders,
		       count(DISTINCT o.customer_name) AS customers
		FROM orders o
		WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> 'cancelled'
		GROUP BY date_trunc('month', o.created_at)
		ORDER BY date_trunc('month', o.created_at)`
	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthlySales
	for rows.Next() {
		var row MonthlySales
		if err := rows.Scan(&row.Month, &row.Sales, &row.Orders, &row.Customers); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CategorySales attributes item revenue to the product catalog category
// matched by item name.
func (s *PGSource) CategorySales(ctx context.Context, from, to time.Time) ([]CategorySales, error) {
	const query = `
		SELECT coalesce(p.category, 'other') AS name,
		       coalesce(sum((item->>'price')::numeric * coalesce((item->>'quantity')::int, 1)), 0) AS sales
		FROM orders o
		CROSS JOIN jsonb_array_elements(o.items) item
		LEFT JOIN products p ON p.name = item->>'name'
		WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> 'cancelled'
		GROUP BY coalesce(p.category, 'other')
		ORDER BY sales DESC`
	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategorySales
	for rows.Next() {
		var row CategorySales
		if err := rows.Scan(&row.Name, &row.Sales); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// MethodAmounts sums completed collections per payment channel.
func (s *PGSource) MethodAmounts(ctx context.Context, from, to time.Time) ([]MethodAmount, error) {
	const query = `
		SELECT method, coalesce(sum(amount), 0) AS amount
		FROM collections
		WHERE date >= $1 AND date < $2 AND status = 'completed'
		GROUP BY method
		ORDER BY amount DESC`
	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MethodAmount
	for rows.Next() {
		var row MethodAmount
		if err := rows.Scan(&row.Method, &row.Amount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Customer segment cut-offs on lifetime spend.
const (
	premiumSpend = 50000
	regularSpend = 10000
)

// CustomerSegments buckets customers by lifetime spend.
func (s *PGSource) CustomerSegments(ctx context.Context, from, to time.Time) ([]SegmentRaw, error) {
	const query = `
		SELECT CASE
		         WHEN total_spent >= $1 THEN 'premium'
		         WHEN total_spent >= $2 THEN 'regular'
		         ELSE 'new'
		       END AS segment,
		       count(*) AS count,
		       coalesce(sum(total_spent), 0) AS revenue
		FROM customers
		WHERE status <> 'blocked'
		GROUP BY 1
		ORDER BY revenue DESC`
	rows, err := s.pool.Query(ctx, query, premiumSpend, regularSpend)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SegmentRaw
	for rows.Next() {
		var row SegmentRaw
		if err := rows.Scan(&row.Segment, &row.Count, &row.Revenue); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// DailySales groups order revenue per day over the range.
func (s *PGSource) DailySales(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	query := `
		SELECT to_char(date_trunc('day', o.created_at), 'DD/MM') AS date,
		       coalesce(sum(` + orderTotal + `), 0) AS sales,
		       count(*) AS orders
		FROM orders o
		WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> 'cancelled'
		GROUP BY date_trunc('day', o.created_at)
		ORDER BY date_trunc('day', o.created_at)`
	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailySales
	for rows.Next() {
		var row DailySales
		if err := rows.Scan(&row.Date, &row.Sales, &row.Orders); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

var _ Source = (*PGSource)(nil)
