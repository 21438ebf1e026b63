package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func (c *catalog) newOrder(t *testing.T, created time.Time, qty int) *order.Order {
	t.Helper()
	price := c.margherita.Price
	sub := price.Mul(decimal.NewFromInt(int64(qty)))
	o := &order.Order{
		CustomerID:      c.joao.ID,
		RestaurantID:    c.bella.ID,
		DeliveryAddress: "Rua das Flores, 123",
		Status:          order.StatusPending,
		Subtotal:        sub,
		DeliveryFee:     c.bella.DeliveryFee,
		Total:           sub.Add(c.bella.DeliveryFee),
		CreatedAt:       created,
		UpdatedAt:       created,
		Items: []order.Item{{
			ProductID: c.margherita.ID,
			Quantity:  qty,
			UnitPrice: price,
			Subtotal:  sub,
		}},
	}
	require.NoError(t, c.orders.Create(context.Background(), o))
	return o
}

func (c *catalog) countOrders(t *testing.T) (orders, items int) {
	t.Helper()
	require.NoError(t, c.db.QueryRow(`SELECT count(*) FROM orders`).Scan(&orders))
	require.NoError(t, c.db.QueryRow(`SELECT count(*) FROM order_items`).Scan(&items))
	return orders, items
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	created := c.newOrder(t, base, 2)
	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.Items[0].ID)
	assert.Equal(t, int64(1), created.Version)

	got, err := c.orders.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "João Silva", got.CustomerName)
	assert.Equal(t, "Pizzaria Bella", got.RestaurantName)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, "75.00", got.Total.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Pizza Margherita", got.Items[0].ProductName)
	assert.Equal(t, "70.00", got.Items[0].Subtotal.StringFixed(2))

	_, err = c.orders.GetByID(ctx, 404)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestOrderRepository_PriceChangeKeepsItemSnapshot(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	created := c.newOrder(t, base, 2)

	c.margherita.Price = decimal.RequireFromString("99.90")
	require.NoError(t, c.products.Update(ctx, &c.margherita))
	updated, err := c.products.GetByID(ctx, c.margherita.ID)
	require.NoError(t, err)
	require.True(t, updated.Price.Equal(decimal.RequireFromString("99.90")))

	got, err := c.orders.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("35.00")), "unit price %s", got.Items[0].UnitPrice)
	assert.True(t, got.Items[0].Subtotal.Equal(decimal.RequireFromString("70.00")), "item subtotal %s", got.Items[0].Subtotal)
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("70.00")), "subtotal %s", got.Subtotal)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("75.00")), "total %s", got.Total)
}

func TestOrderRepository_CreateRollsBack(t *testing.T) {
	c := newCatalog(t)
	o := &order.Order{
		CustomerID:      c.joao.ID,
		RestaurantID:    c.bella.ID,
		DeliveryAddress: "Rua das Flores, 123",
		Status:          order.StatusPending,
		CreatedAt:       base,
		UpdatedAt:       base,
		Items: []order.Item{
			{ProductID: c.margherita.ID, Quantity: 1, UnitPrice: c.margherita.Price, Subtotal: c.margherita.Price},
			{ProductID: 999, Quantity: 1, UnitPrice: decimal.NewFromInt(1), Subtotal: decimal.NewFromInt(1)},
		},
	}

	err := c.orders.Create(context.Background(), o)

	require.Error(t, err)
	assert.Zero(t, o.ID)
	orders, items := c.countOrders(t)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestOrderRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	first := c.newOrder(t, base, 1)
	second := c.newOrder(t, base.Add(time.Hour), 2)
	c.newOrder(t, base.Add(48*time.Hour), 3)

	from, to := base, base.Add(time.Hour)
	got, err := c.orders.List(ctx, order.Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	got, err = c.orders.List(ctx, order.Filter{From: &to})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = c.orders.List(ctx, order.Filter{CustomerID: c.pedro.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOrderRepository_ListPaged(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	for i := range 5 {
		c.newOrder(t, base.Add(time.Duration(i)*time.Minute), i+1)
	}

	page, total, err := c.orders.ListPaged(ctx, order.Filter{}, order.PageRequest{Page: 0, Size: 2, Sort: order.SortTotal, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, "180.00", page[0].Total.StringFixed(2))
	assert.Equal(t, "145.00", page[1].Total.StringFixed(2))
	require.Len(t, page[0].Items, 1)

	page, _, err = c.orders.ListPaged(ctx, order.Filter{}, order.PageRequest{Page: 2, Size: 2, Sort: order.SortCreatedAt})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 5, page[0].Items[0].Quantity)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	o := c.newOrder(t, base, 1)

	updated, err := c.orders.UpdateStatus(ctx, o.ID, func(o *order.Order) error {
		o.Status = order.StatusConfirmed
		o.UpdatedAt = base.Add(time.Minute)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	got, err := c.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
	assert.Equal(t, base.Add(time.Minute), got.UpdatedAt)

	_, err = c.orders.UpdateStatus(ctx, o.ID, func(*order.Order) error {
		return fault.Rule("nope")
	})
	assert.Equal(t, fault.KindRule, fault.KindOf(err))
	got, err = c.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestOrderRepository_ConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	o := c.newOrder(t, base, 1)

	_, err := c.orders.UpdateStatus(ctx, o.ID, func(outer *order.Order) error {
		_, err := c.orders.UpdateStatus(ctx, o.ID, func(inner *order.Order) error {
			inner.Status = order.StatusCancelled
			return nil
		})
		require.NoError(t, err)
		outer.Status = order.StatusPreparing
		return nil
	})

	require.ErrorIs(t, err, order.ErrConcurrentUpdate)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
	got, err := c.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
}

func TestOrderRepository_ReportSource(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	c.newOrder(t, base, 2)
	cancelled := c.newOrder(t, base, 10)
	_, err := c.orders.UpdateStatus(ctx, cancelled.ID, func(o *order.Order) error {
		o.Status = order.StatusCancelled
		return nil
	})
	require.NoError(t, err)

	svc := report.NewService(c.orders)

	sales, err := svc.SalesByRestaurant(ctx, report.Period{})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "75.00", sales[0].Revenue.StringFixed(2))
	assert.Equal(t, int64(1), sales[0].Orders)

	top, err := svc.TopProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(2), top[0].Quantity)

	lines, err := svc.OrdersInPeriod(ctx, report.Period{})
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}
