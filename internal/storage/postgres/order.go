package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders
		(customer_id, restaurant_id, delivery_address, status, subtotal, delivery_fee, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, version`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	selectOrdersSQL = `SELECT o.id, o.customer_id, c.name, o.restaurant_id, r.name, o.delivery_address,
		o.status, o.subtotal, o.delivery_fee, o.total, o.version, o.created_at, o.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		JOIN restaurants r ON r.id = o.restaurant_id`

	countOrdersSQL = `SELECT count(*) FROM orders o`

	selectOrderItemsSQL = `SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = $3, version = version + 1
		WHERE id = $1 RETURNING version`
)

var sortColumns = map[order.SortField]string{
	order.SortID:        "o.id",
	order.SortCreatedAt: "o.created_at",
	order.SortUpdatedAt: "o.updated_at",
	order.SortTotal:     "o.total",
	order.SortStatus:    "o.status",
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order header and its items in one transaction. Items
// are sent as a single batch.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrderSQL,
			o.CustomerID, o.RestaurantID, o.DeliveryAddress, string(o.Status),
			o.Subtotal, o.DeliveryFee, o.Total, o.CreatedAt, o.UpdatedAt,
		).Scan(&o.ID, &o.Version)
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		batch := &pgx.Batch{}
		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID
			batch.Queue(insertOrderItemSQL, o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal).
				QueryRow(func(row pgx.Row) error {
					return row.Scan(&it.ID)
				})
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting order items: %w", err)
		}
		return nil
	})
	if err != nil {
		o.ID = 0
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// GetByID returns the order with its items and display names.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.get(ctx, r.pool, id, "")
}

func (r *OrderRepository) get(ctx context.Context, q querier, id int64, lock string) (*order.Order, error) {
	rows, err := q.Query(ctx, selectOrdersSQL+" WHERE o.id = $1"+lock, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.NotFound(id)
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	orders := []order.Order{o}
	if err := loadItems(ctx, q, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// List returns matching orders ordered by creation time.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]order.Order, error) {
	w := orderWhere(f)
	rows, err := r.pool.Query(ctx, selectOrdersSQL+w.String()+" ORDER BY o.created_at, o.id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if err := loadItems(ctx, r.pool, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListPaged returns one sorted page of matching orders and the match count.
func (r *OrderRepository) ListPaged(ctx context.Context, f order.Filter, p order.PageRequest) ([]order.Order, int64, error) {
	w := orderWhere(f)

	var total int64
	if err := r.pool.QueryRow(ctx, countOrdersSQL+w.String(), w.args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("%s%s ORDER BY %s %s, o.id %s LIMIT %s OFFSET %s",
		selectOrdersSQL, w.String(), col, dir, dir, w.next(p.Size), w.next(p.Offset()))

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders page: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders page: %w", err)
	}
	if err := loadItems(ctx, r.pool, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus locks the order row for the duration of the transaction so
// concurrent status changes of the same order are applied one at a time.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, fn func(*order.Order) error) (*order.Order, error) {
	var updated *order.Order
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := r.get(ctx, tx, id, " FOR UPDATE OF o")
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, updateOrderStatusSQL, id, string(o.Status), o.UpdatedAt).Scan(&o.Version); err != nil {
			return fmt.Errorf("updating order %d status: %w", id, err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func orderWhere(f order.Filter) *where {
	w := &where{}
	if f.Status != "" {
		w.add("o.status = $%d", string(f.Status))
	}
	if f.CustomerID != 0 {
		w.add("o.customer_id = $%d", f.CustomerID)
	}
	if f.RestaurantID != 0 {
		w.add("o.restaurant_id = $%d", f.RestaurantID)
	}
	if f.From != nil {
		w.add("o.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("o.created_at <= $%d", *f.To)
	}
	return w
}

// loadItems fetches the items of all given orders in one query.
func loadItems(ctx context.Context, q querier, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := q.Query(ctx, selectOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}

	for _, it := range items {
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &o.RestaurantID, &o.RestaurantName, &o.DeliveryAddress,
		&status, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal)
	return it, err
}
