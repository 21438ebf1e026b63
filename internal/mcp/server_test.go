package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/storage/sqlite"
)

func newTestServer(t *testing.T) (*server.MCPServer, *order.Order) {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	customerRepo := sqlite.NewCustomerRepository(conn)
	restaurantRepo := sqlite.NewRestaurantRepository(conn)
	productRepo := sqlite.NewProductRepository(conn)
	orderRepo := sqlite.NewOrderRepository(conn)

	c, err := customer.NewService(customerRepo).Register(ctx, customer.Input{Name: "João Silva", Email: "joao@email.com"})
	require.NoError(t, err)
	r, err := restaurant.NewService(restaurantRepo).Create(ctx, restaurant.Input{
		Name:        "Pizzaria Bella",
		Category:    "Pizza",
		Address:     "Av. Paulista, 1000",
		DeliveryFee: decimal.RequireFromString("5.00"),
	})
	require.NoError(t, err)
	p, err := product.NewService(productRepo, restaurantRepo).Create(ctx, product.Input{
		Name:         "Pizza Margherita",
		Price:        decimal.RequireFromString("35.00"),
		Category:     "Pizza",
		RestaurantID: r.ID,
	})
	require.NoError(t, err)

	orders := order.NewService(customerRepo, restaurantRepo, productRepo, orderRepo, order.Calculator{})
	o, err := orders.Place(ctx, order.PlaceRequest{
		CustomerID:      c.ID,
		RestaurantID:    r.ID,
		DeliveryAddress: "Rua das Flores, 123",
		Items:           []order.ItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	return NewServer(Services{Orders: orders, Reports: report.NewService(orderRepo)}), o
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %q", name)

	res, err := tool.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestServerHasTools(t *testing.T) {
	s, _ := newTestServer(t)

	tools := s.ListTools()
	expected := []string{
		"sales_by_restaurant",
		"top_products",
		"top_customers",
		"orders_in_period",
		"get_order",
	}
	for _, name := range expected {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expected))
}

func TestSalesByRestaurant(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "sales_by_restaurant", map[string]any{"from": "2000-01-01"})
	require.False(t, res.IsError, text(t, res))

	var sales []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, "Pizzaria Bella", sales[0]["restaurantName"])
	assert.Equal(t, 75.0, sales[0]["totalSales"])

	res = call(t, s, "sales_by_restaurant", map[string]any{"to": "last week"})
	assert.True(t, res.IsError)
}

func TestTopProducts(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "top_products", map[string]any{"limit": 1.0})
	require.False(t, res.IsError, text(t, res))
	assert.JSONEq(t, `[{"productId":1,"productName":"Pizza Margherita","quantitySold":2,"revenue":70.00}]`, text(t, res))

	res = call(t, s, "top_products", map[string]any{"limit": -1.0})
	assert.True(t, res.IsError)
}

func TestOrdersInPeriod(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "orders_in_period", map[string]any{"from": "2999-01-01"})
	require.False(t, res.IsError)
	assert.Equal(t, "[]", text(t, res))

	res = call(t, s, "orders_in_period", nil)
	require.False(t, res.IsError)
	var lines []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &lines))
	assert.Len(t, lines, 1)
}

func TestGetOrder(t *testing.T) {
	s, placed := newTestServer(t)

	res := call(t, s, "get_order", map[string]any{"id": float64(placed.ID)})
	require.False(t, res.IsError, text(t, res))
	var o map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &o))
	assert.Equal(t, "PENDING", o["status"])
	assert.Equal(t, 75.0, o["total"])

	res = call(t, s, "get_order", map[string]any{"id": 999.0})
	assert.True(t, res.IsError)
	assert.Equal(t, "order 999 not found", text(t, res))

	res = call(t, s, "get_order", map[string]any{})
	assert.True(t, res.IsError)
}
