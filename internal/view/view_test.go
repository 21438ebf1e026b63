package view

import (
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

func TestMoney(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want string
	}{
		{"5", "5.00"},
		{"3.5", "3.50"},
		{"0.105", "0.11"},
		{"0", "0.00"},
	} {
		got := Marshal(func(e *jx.Encoder) { Money(e, decimal.RequireFromString(tt.in)) })
		assert.Equal(t, tt.want, string(got), tt.in)
	}
}

func TestRestaurant_OptionalFields(t *testing.T) {
	r := &restaurant.Restaurant{
		ID:          1,
		Name:        "Pizzaria Bella",
		Category:    restaurant.CategoryPizza,
		DeliveryFee: decimal.RequireFromString("5"),
		Active:      true,
	}
	assert.JSONEq(t,
		`{"id":1,"name":"Pizzaria Bella","category":"Pizza","address":"","phone":"","deliveryFee":5.00,"rating":null,"active":true}`,
		string(Marshal(One(r, Restaurant))),
	)

	rating := decimal.RequireFromString("4.5")
	r.Rating = &rating
	r.PostalCode = "01310-100"
	assert.JSONEq(t,
		`{"id":1,"name":"Pizzaria Bella","category":"Pizza","address":"","phone":"","postalCode":"01310-100","deliveryFee":5.00,"rating":4.5,"active":true}`,
		string(Marshal(One(r, Restaurant))),
	)
}

func TestOrderLine(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	lines := []report.OrderLine{{
		OrderID:        7,
		CustomerName:   "João Silva",
		RestaurantName: "Burger King",
		Status:         order.StatusCancelled,
		Total:          decimal.RequireFromString("28.5"),
		CreatedAt:      created,
	}}
	assert.JSONEq(t,
		`[{"orderId":7,"customerName":"João Silva","restaurantName":"Burger King","status":"CANCELLED","total":28.50,"createdAt":"2026-03-01T15:30:00Z"}]`,
		string(Marshal(List(lines, OrderLine))),
	)
}

func TestList_Empty(t *testing.T) {
	assert.Equal(t, "[]", string(Marshal(List([]report.ProductSales(nil), ProductSales))))
}
