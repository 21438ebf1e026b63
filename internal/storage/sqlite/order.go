package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
)

const (
	insertOrderSQL = `INSERT INTO orders
		(customer_id, restaurant_id, delivery_address, status, subtotal, delivery_fee, total, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?)`

	selectOrdersSQL = `SELECT o.id, o.customer_id, c.name, o.restaurant_id, r.name, o.delivery_address,
		o.status, o.subtotal, o.delivery_fee, o.total, o.version, o.created_at, o.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		JOIN restaurants r ON r.id = o.restaurant_id`

	selectOrderItemsSQL = `SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id IN `

	updateOrderStatusSQL = `UPDATE orders SET status = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`
)

var sortColumns = map[order.SortField]string{
	order.SortID:        "o.id",
	order.SortCreatedAt: "o.created_at",
	order.SortUpdatedAt: "o.updated_at",
	order.SortTotal:     "CAST(o.total AS REAL)",
	order.SortStatus:    "o.status",
}

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ report.Source    = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository backed by SQLite.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository returns an OrderRepository that uses db.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order header and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			o.ID = 0
		}
	}()

	res, err := tx.ExecContext(ctx, insertOrderSQL,
		o.CustomerID, o.RestaurantID, o.DeliveryAddress, string(o.Status),
		o.Subtotal, o.DeliveryFee, o.Total, formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading order id: %w", err)
	}
	o.Version = 1

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		res, err := tx.ExecContext(ctx, insertOrderItemSQL, o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
		if err != nil {
			return fmt.Errorf("inserting order item %d: %w", i, err)
		}
		if it.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading order item id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order: %w", err)
	}
	return nil
}

// GetByID returns the order with its items and display names.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	orders, err := r.query(ctx, selectOrdersSQL+` WHERE o.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	if len(orders) == 0 {
		return nil, order.NotFound(id)
	}
	return &orders[0], nil
}

// List returns matching orders ordered by creation time.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]order.Order, error) {
	w := orderWhere(f)
	orders, err := r.query(ctx, selectOrdersSQL+w.String()+` ORDER BY o.created_at, o.id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// ListPaged returns one sorted page of matching orders and the match count.
func (r *OrderRepository) ListPaged(ctx context.Context, f order.Filter, p order.PageRequest) ([]order.Order, int64, error) {
	w := orderWhere(f)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM orders o`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	col, ok := sortColumns[p.Sort]
	if !ok {
		col = sortColumns[order.SortID]
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	query := fmt.Sprintf("%s%s ORDER BY %s %s, o.id %s LIMIT ? OFFSET ?", selectOrdersSQL, w.String(), col, dir, dir)
	args := append(w.args, p.Size, p.Offset())

	orders, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders page: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus applies fn to the current order and writes the result only
// if no other update happened in between. A lost race yields
// order.ErrConcurrentUpdate.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, fn func(*order.Order) error) (*order.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	read := o.Version
	if err := fn(o); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, updateOrderStatusSQL, string(o.Status), formatTime(o.UpdatedAt), id, read)
	if err != nil {
		return nil, fmt.Errorf("updating order %d status: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, order.ErrConcurrentUpdate
	}
	o.Version = read + 1
	return o, nil
}

// query runs an order select and attaches items. Rows are drained before the
// item query runs because the pool holds a single connection.
func (r *OrderRepository) query(ctx context.Context, query string, args ...any) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, selectOrderItemsSQL+in(len(ids))+` ORDER BY i.order_id, i.id`, int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func orderWhere(f order.Filter) *where {
	w := &where{}
	if f.Status != "" {
		w.add("o.status = ?", string(f.Status))
	}
	if f.CustomerID != 0 {
		w.add("o.customer_id = ?", f.CustomerID)
	}
	if f.RestaurantID != 0 {
		w.add("o.restaurant_id = ?", f.RestaurantID)
	}
	if f.From != nil {
		w.add("o.created_at >= ?", formatTime(*f.From))
	}
	if f.To != nil {
		w.add("o.created_at <= ?", formatTime(*f.To))
	}
	return w
}

func scanOrder(s scanner) (order.Order, error) {
	var (
		o                order.Order
		status           string
		created, updated string
	)
	err := s.Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &o.RestaurantID, &o.RestaurantName, &o.DeliveryAddress,
		&status, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.Version, &created, &updated,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if o.CreatedAt, err = parseTime(created); err != nil {
		return o, err
	}
	o.UpdatedAt, err = parseTime(updated)
	return o, err
}
