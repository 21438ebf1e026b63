package order

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

// --- Mock implementations ---

type mockCustomers map[int64]*customer.Customer

func (m mockCustomers) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := m[id]
	if !ok {
		return nil, customer.NotFound(id)
	}
	return c, nil
}

type mockRestaurants map[int64]*restaurant.Restaurant

func (m mockRestaurants) GetByID(_ context.Context, id int64) (*restaurant.Restaurant, error) {
	r, ok := m[id]
	if !ok {
		return nil, restaurant.NotFound(id)
	}
	return r, nil
}

type mockProducts struct {
	byID  map[int64]product.Product
	calls int
}

func (m *mockProducts) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	m.calls++
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockOrderRepo struct {
	orders    map[int64]*Order
	nextID    int64
	writes    int
	createErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[int64]*Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.writes++
	m.nextID++
	o.ID = m.nextID
	o.Version = 1
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *o
	cp.CustomerName = "João Silva"
	cp.RestaurantName = "Pizzaria Bella"
	return &cp, nil
}

func (m *mockOrderRepo) List(_ context.Context, f Filter) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if f.Match(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockOrderRepo) ListPaged(ctx context.Context, f Filter, p PageRequest) ([]Order, int64, error) {
	all, _ := m.List(ctx, f)
	start := min(p.Offset(), len(all))
	end := min(start+p.Size, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id int64, fn func(*Order) error) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, NotFound(id)
	}
	cp := *o
	if err := fn(&cp); err != nil {
		return nil, err
	}
	m.writes++
	cp.Version++
	m.orders[id] = &cp
	out := cp
	return &out, nil
}

// --- Helpers ---

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	orders    *mockOrderRepo
	products  *mockProducts
	customers mockCustomers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customers := mockCustomers{
		1: {ID: 1, Name: "João Silva", Email: "joao@email.com", Active: true},
		3: {ID: 3, Name: "Pedro Oliveira", Email: "pedro@email.com", Active: false},
	}
	rating := decimal.RequireFromString("4.5")
	restaurants := mockRestaurants{
		1: {ID: 1, Name: "Pizzaria Bella", Category: restaurant.CategoryPizza, DeliveryFee: decimal.RequireFromString("5.00"), Rating: &rating, Active: true},
		2: {ID: 2, Name: "Burger King", Category: restaurant.CategoryBurger, DeliveryFee: decimal.RequireFromString("3.50"), Active: true},
		9: {ID: 9, Name: "Closed Kitchen", Category: restaurant.CategoryItalian, Active: false},
	}
	products := &mockProducts{byID: map[int64]product.Product{
		1: {ID: 1, Name: "Pizza Margherita", Price: decimal.RequireFromString("35.00"), Available: true, RestaurantID: 1},
		2: {ID: 2, Name: "Pizza Calabresa", Price: decimal.RequireFromString("38.00"), Available: true, RestaurantID: 1},
		3: {ID: 3, Name: "Whopper", Price: decimal.RequireFromString("25.00"), Available: true, RestaurantID: 2},
		5: {ID: 5, Name: "Batata Frita", Price: decimal.RequireFromString("12.00"), Available: false, RestaurantID: 2},
	}}
	orders := newMockOrderRepo()

	svc := NewService(customers, restaurants, products, orders, Calculator{MaxQuantity: 100})
	svc.now = func() time.Time { return testNow }

	return &fixture{svc: svc, orders: orders, products: products, customers: customers}
}

func (f *fixture) place(t *testing.T) *Order {
	t.Helper()
	o, err := f.svc.Place(context.Background(), PlaceRequest{
		CustomerID:      1,
		RestaurantID:    1,
		DeliveryAddress: "Rua das Flores, 123",
		Items:           []ItemRequest{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	return o
}

// --- Tests ---

func TestPlace(t *testing.T) {
	f := newFixture(t)

	o := f.place(t)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "70.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", o.DeliveryFee.StringFixed(2))
	assert.Equal(t, "75.00", o.Total.StringFixed(2))
	assert.Equal(t, "João Silva", o.CustomerName)
	assert.Equal(t, "Pizzaria Bella", o.RestaurantName)
	assert.Equal(t, testNow, o.CreatedAt)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Pizza Margherita", o.Items[0].ProductName)
	assert.Equal(t, "35.00", o.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, 1, f.products.calls)
}

func TestPlace_TotalsInvariant(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Place(context.Background(), PlaceRequest{
		CustomerID:      1,
		RestaurantID:    1,
		DeliveryAddress: "Rua das Flores, 123",
		Items: []ItemRequest{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 1},
			{ProductID: 1, Quantity: 1},
		},
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range o.Items {
		assert.True(t, it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Equal(it.Subtotal))
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sum.Equal(o.Subtotal))
	assert.True(t, o.Subtotal.Add(o.DeliveryFee).Equal(o.Total))
	assert.Equal(t, "183.00", o.Total.StringFixed(2))
}

func TestPlace_EmptyItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Place(context.Background(), PlaceRequest{CustomerID: 1, RestaurantID: 1, DeliveryAddress: "Rua A, 1"})

	require.ErrorIs(t, err, ErrEmptyItems)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestPlace_ShortAddress(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Place(context.Background(), PlaceRequest{
		CustomerID:      1,
		RestaurantID:    1,
		DeliveryAddress: "Rua",
		Items:           []ItemRequest{{ProductID: 1, Quantity: 1}},
	})

	var vErr *fault.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "deliveryAddress", vErr.Fields[0].Field)
}

func TestPlace_Failures(t *testing.T) {
	tests := []struct {
		name string
		req  PlaceRequest
		kind fault.Kind
		msg  string
	}{
		{
			name: "unknown customer",
			req:  PlaceRequest{CustomerID: 42, RestaurantID: 1, Items: []ItemRequest{{ProductID: 1, Quantity: 1}}},
			kind: fault.KindNotFound,
			msg:  "customer 42 not found",
		},
		{
			name: "inactive customer",
			req:  PlaceRequest{CustomerID: 3, RestaurantID: 1, Items: []ItemRequest{{ProductID: 1, Quantity: 1}}},
			kind: fault.KindRule,
			msg:  "Pedro Oliveira",
		},
		{
			name: "unknown restaurant",
			req:  PlaceRequest{CustomerID: 1, RestaurantID: 77, Items: []ItemRequest{{ProductID: 1, Quantity: 1}}},
			kind: fault.KindNotFound,
			msg:  "restaurant 77 not found",
		},
		{
			name: "inactive restaurant",
			req:  PlaceRequest{CustomerID: 1, RestaurantID: 9, Items: []ItemRequest{{ProductID: 1, Quantity: 1}}},
			kind: fault.KindRule,
			msg:  "Closed Kitchen",
		},
		{
			name: "unknown product after unavailable one",
			req:  PlaceRequest{CustomerID: 1, RestaurantID: 2, Items: []ItemRequest{{ProductID: 5, Quantity: 1}, {ProductID: 404, Quantity: 1}}},
			kind: fault.KindNotFound,
			msg:  "product 404 not found",
		},
		{
			name: "unavailable product",
			req:  PlaceRequest{CustomerID: 1, RestaurantID: 2, Items: []ItemRequest{{ProductID: 5, Quantity: 1}}},
			kind: fault.KindRule,
			msg:  "Batata Frita",
		},
		{
			name: "quantity above max",
			req:  PlaceRequest{CustomerID: 1, RestaurantID: 1, Items: []ItemRequest{{ProductID: 1, Quantity: 101}}},
			kind: fault.KindRule,
			msg:  "between 1 and 100",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.req.DeliveryAddress = "Rua das Flores, 123"

			_, err := f.svc.Place(context.Background(), tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.kind, fault.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Empty(t, f.orders.orders)
		})
	}
}

func TestPlace_RestaurantMismatchRegardlessOfOrder(t *testing.T) {
	for _, items := range [][]ItemRequest{
		{{ProductID: 1, Quantity: 1}, {ProductID: 3, Quantity: 1}},
		{{ProductID: 3, Quantity: 1}, {ProductID: 1, Quantity: 1}},
	} {
		f := newFixture(t)

		_, err := f.svc.Place(context.Background(), PlaceRequest{
			CustomerID:      1,
			RestaurantID:    1,
			DeliveryAddress: "Rua das Flores, 123",
			Items:           items,
		})

		var mErr *ProductRestaurantMismatchError
		require.ErrorAs(t, err, &mErr)
		assert.Equal(t, "Whopper", mErr.ProductName)
		assert.Equal(t, "Pizzaria Bella", mErr.RestaurantName)
		assert.Equal(t, fault.KindRule, fault.KindOf(err))
		assert.Zero(t, f.orders.writes)
	}
}

func TestPlace_CreateError(t *testing.T) {
	f := newFixture(t)
	f.orders.createErr = errors.New("db write failed")

	_, err := f.svc.Place(context.Background(), PlaceRequest{
		CustomerID:      1,
		RestaurantID:    1,
		DeliveryAddress: "Rua das Flores, 123",
		Items:           []ItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	assert.Equal(t, fault.KindInternal, fault.KindOf(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)
	later := testNow.Add(time.Hour)
	f.svc.now = func() time.Time { return later }

	updated, err := f.svc.UpdateStatus(context.Background(), o.ID, "confirmed")

	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, int64(2), updated.Version)
}

func TestUpdateStatus_Failures(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		target string
		msg    string
	}{
		{"delivered is terminal", StatusDelivered, "PENDING", "terminal states are immutable"},
		{"cancelled is terminal", StatusCancelled, "CONFIRMED", "terminal states are immutable"},
		{"unknown status", StatusPending, "SHIPPED", "unknown order status"},
		{"cancel while out for delivery", StatusOutForDelivery, "CANCELLED", "cannot move from OUT_FOR_DELIVERY to CANCELLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			o := f.place(t)
			f.orders.orders[o.ID].Status = tt.from
			writes := f.orders.writes

			_, err := f.svc.UpdateStatus(context.Background(), o.ID, tt.target)

			require.Error(t, err)
			assert.Equal(t, fault.KindRule, fault.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, tt.from, f.orders.orders[o.ID].Status)
			assert.Equal(t, writes, f.orders.writes)
		})
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), 99, "CONFIRMED")

	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestDeliveredThenCancel(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)

	_, err := f.svc.UpdateStatus(context.Background(), o.ID, "DELIVERED")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), o.ID)

	require.Error(t, err)
	assert.Equal(t, fault.KindRule, fault.KindOf(err))
	assert.Contains(t, err.Error(), "delivered orders cannot be cancelled")
	assert.Equal(t, StatusDelivered, f.orders.orders[o.ID].Status)
}

func TestCancel(t *testing.T) {
	tests := []struct {
		from    Status
		wantErr string
	}{
		{StatusPending, ""},
		{StatusConfirmed, ""},
		{StatusPreparing, ""},
		{StatusOutForDelivery, "out for delivery"},
		{StatusCancelled, "already cancelled"},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			f := newFixture(t)
			o := f.place(t)
			f.orders.orders[o.ID].Status = tt.from

			got, err := f.svc.Cancel(context.Background(), o.ID)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, fault.KindRule, fault.KindOf(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.from, f.orders.orders[o.ID].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, got.Status)
		})
	}
}

func TestQuote_IdempotentWithoutWrites(t *testing.T) {
	f := newFixture(t)
	req := QuoteRequest{RestaurantID: 2, Items: []ItemRequest{{ProductID: 3, Quantity: 2}}}

	first, err := f.svc.Quote(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "53.50", first.Total.StringFixed(2))
	assert.Zero(t, f.orders.writes)
}

func TestQuote_InactiveRestaurant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Quote(context.Background(), QuoteRequest{RestaurantID: 9, Items: []ItemRequest{{ProductID: 1, Quantity: 1}}})

	assert.Equal(t, fault.KindRule, fault.KindOf(err))
}

func TestListDelegations(t *testing.T) {
	f := newFixture(t)
	o := f.place(t)

	byCustomer, err := f.svc.ListByCustomer(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, o.ID, byCustomer[0].ID)

	byRestaurant, err := f.svc.ListByRestaurant(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, byRestaurant)

	_, err = f.svc.ListByCustomer(context.Background(), 55)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))

	byStatus, err := f.svc.ListByStatus(context.Background(), "pending")
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	_, err = f.svc.ListByStatus(context.Background(), "LOST")
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestListPaged(t *testing.T) {
	f := newFixture(t)
	for range 5 {
		f.place(t)
	}

	page, err := f.svc.ListPaged(context.Background(), Filter{}, PageRequest{Page: 1, Size: 2})

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Prev)
	assert.Equal(t, 2, *page.Next)
	assert.Equal(t, 0, *page.Prev)

	_, err = f.svc.ListPaged(context.Background(), Filter{}, PageRequest{Page: 0, Size: 101, Sort: "price"})
	var vErr *fault.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
}
