package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
)

const (
	salesByRestaurantSQL = `SELECT o.restaurant_id, r.name, sum(o.total), count(*)
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.status <> 'CANCELLED'
			AND ($1::timestamptz IS NULL OR o.created_at >= $1)
			AND ($2::timestamptz IS NULL OR o.created_at <= $2)
		GROUP BY o.restaurant_id, r.name
		ORDER BY o.restaurant_id`

	topProductsSQL = `SELECT i.product_id, p.name, sum(i.quantity)::bigint, sum(i.subtotal)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		WHERE o.status <> 'CANCELLED'
		GROUP BY i.product_id, p.name
		ORDER BY sum(i.quantity) DESC, i.product_id
		LIMIT $1`

	topCustomersSQL = `SELECT o.customer_id, c.name, count(*), sum(o.total)
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.status <> 'CANCELLED'
		GROUP BY o.customer_id, c.name
		ORDER BY count(*) DESC, sum(o.total) DESC, o.customer_id
		LIMIT $1`
)

var (
	_ report.Source   = (*ReportRepository)(nil)
	_ report.Pushdown = (*ReportRepository)(nil)
)

// ReportRepository serves report queries. Grouping runs in PostgreSQL.
type ReportRepository struct {
	*OrderRepository
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{OrderRepository: NewOrderRepository(pool)}
}

// SalesByRestaurant groups non-cancelled orders in the period by restaurant.
func (r *ReportRepository) SalesByRestaurant(ctx context.Context, p report.Period) ([]report.RestaurantSales, error) {
	rows, err := r.pool.Query(ctx, salesByRestaurantSQL, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("querying sales by restaurant: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.RestaurantSales, error) {
		var s report.RestaurantSales
		err := row.Scan(&s.RestaurantID, &s.RestaurantName, &s.Revenue, &s.Orders)
		return s, err
	})
}

// TopProducts ranks products of non-cancelled orders by quantity sold.
func (r *ReportRepository) TopProducts(ctx context.Context, limit int) ([]report.ProductSales, error) {
	rows, err := r.pool.Query(ctx, topProductsSQL, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying top products: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.ProductSales, error) {
		var s report.ProductSales
		err := row.Scan(&s.ProductID, &s.ProductName, &s.Quantity, &s.Revenue)
		return s, err
	})
}

// TopCustomers ranks customers of non-cancelled orders by order count.
func (r *ReportRepository) TopCustomers(ctx context.Context, limit int) ([]report.CustomerRanking, error) {
	rows, err := r.pool.Query(ctx, topCustomersSQL, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying top customers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.CustomerRanking, error) {
		var c report.CustomerRanking
		err := row.Scan(&c.CustomerID, &c.CustomerName, &c.Orders, &c.Spent)
		return c, err
	})
}

// sqlLimit maps a non-positive limit to NULL, which PostgreSQL treats as
// LIMIT ALL.
func sqlLimit(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
