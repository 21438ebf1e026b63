// Package report aggregates placed orders into sales and ranking reports.
// It never mutates the order store.
package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
)

// Period bounds order creation time. Each bound is inclusive and optional.
type Period struct {
	From *time.Time
	To   *time.Time
}

// ParseBound parses an RFC 3339 timestamp or a YYYY-MM-DD date. An empty
// string is an open bound. A date used as an upper bound covers the whole
// day.
func ParseBound(raw string, upper bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errors.Errorf("%q is not an RFC 3339 timestamp or a YYYY-MM-DD date", raw)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ParsePeriod parses both bounds of a period.
func ParsePeriod(from, to string) (Period, error) {
	var (
		p   Period
		err error
	)
	if p.From, err = ParseBound(from, false); err != nil {
		return p, errors.Wrap(err, "from")
	}
	if p.To, err = ParseBound(to, true); err != nil {
		return p, errors.Wrap(err, "to")
	}
	return p, nil
}

// Filter returns the order filter selecting the period.
func (p Period) Filter() order.Filter {
	return order.Filter{From: p.From, To: p.To}
}

// RestaurantSales is the revenue of one restaurant.
type RestaurantSales struct {
	RestaurantID   int64
	RestaurantName string
	Revenue        decimal.Decimal
	Orders         int64
}

// ProductSales is the sold quantity and revenue of one product.
type ProductSales struct {
	ProductID   int64
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
}

// CustomerRanking is the order count and spend of one customer.
type CustomerRanking struct {
	CustomerID   int64
	CustomerName string
	Orders       int64
	Spent        decimal.Decimal
}

// OrderLine is the audit projection of an order.
type OrderLine struct {
	OrderID        int64
	CustomerName   string
	RestaurantName string
	Status         order.Status
	Total          decimal.Decimal
	CreatedAt      time.Time
}

// Summary bundles every report for one period.
type Summary struct {
	Sales        []RestaurantSales
	TopProducts  []ProductSales
	TopCustomers []CustomerRanking
	Orders       []OrderLine
}

// Source reads orders with their items and display names.
type Source interface {
	List(ctx context.Context, f order.Filter) ([]order.Order, error)
}

// Pushdown is implemented by sources that can group orders themselves.
// Results must match the in-memory aggregation; cancelled orders are
// excluded and limit <= 0 means no limit.
type Pushdown interface {
	SalesByRestaurant(ctx context.Context, p Period) ([]RestaurantSales, error)
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
	TopCustomers(ctx context.Context, limit int) ([]CustomerRanking, error)
}
