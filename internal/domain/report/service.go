package report

import (
	"cmp"
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
)

// Service computes reports over an order Source.
type Service struct {
	src  Source
	push Pushdown
}

// NewService creates a report Service. Grouping is delegated to src when it
// implements Pushdown.
func NewService(src Source) *Service {
	s := &Service{src: src}
	if p, ok := src.(Pushdown); ok {
		s.push = p
	}
	return s
}

// SalesByRestaurant returns revenue and order count per restaurant for
// non-cancelled orders in the period, sorted by restaurant id.
func (s *Service) SalesByRestaurant(ctx context.Context, p Period) ([]RestaurantSales, error) {
	if s.push != nil {
		out, err := s.push.SalesByRestaurant(ctx, p)
		if err != nil {
			return nil, errors.Wrap(err, "sales by restaurant")
		}
		sortSales(out)
		return out, nil
	}

	orders, err := s.src.List(ctx, p.Filter())
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	byID := make(map[int64]*RestaurantSales)
	for i := range orders {
		o := &orders[i]
		if o.Status == order.StatusCancelled {
			continue
		}
		rs, ok := byID[o.RestaurantID]
		if !ok {
			rs = &RestaurantSales{RestaurantID: o.RestaurantID, RestaurantName: o.RestaurantName, Revenue: decimal.Zero}
			byID[o.RestaurantID] = rs
		}
		rs.Revenue = rs.Revenue.Add(o.Total)
		rs.Orders++
	}

	out := make([]RestaurantSales, 0, len(byID))
	for _, rs := range byID {
		out = append(out, *rs)
	}
	sortSales(out)
	return out, nil
}

// TopProducts ranks products of non-cancelled orders by quantity sold.
// A positive limit truncates the result.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if s.push != nil {
		out, err := s.push.TopProducts(ctx, limit)
		if err != nil {
			return nil, errors.Wrap(err, "top products")
		}
		sortProducts(out)
		return truncate(out, limit), nil
	}

	orders, err := s.src.List(ctx, order.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	byID := make(map[int64]*ProductSales)
	for i := range orders {
		o := &orders[i]
		if o.Status == order.StatusCancelled {
			continue
		}
		for _, it := range o.Items {
			ps, ok := byID[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero}
				byID[it.ProductID] = ps
			}
			ps.Quantity += int64(it.Quantity)
			ps.Revenue = ps.Revenue.Add(it.Subtotal)
		}
	}

	out := make([]ProductSales, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	sortProducts(out)
	return truncate(out, limit), nil
}

// TopCustomers ranks customers of non-cancelled orders by order count, then
// by spend. A positive limit truncates the result.
func (s *Service) TopCustomers(ctx context.Context, limit int) ([]CustomerRanking, error) {
	if s.push != nil {
		out, err := s.push.TopCustomers(ctx, limit)
		if err != nil {
			return nil, errors.Wrap(err, "top customers")
		}
		sortCustomers(out)
		return truncate(out, limit), nil
	}

	orders, err := s.src.List(ctx, order.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	byID := make(map[int64]*CustomerRanking)
	for i := range orders {
		o := &orders[i]
		if o.Status == order.StatusCancelled {
			continue
		}
		cr, ok := byID[o.CustomerID]
		if !ok {
			cr = &CustomerRanking{CustomerID: o.CustomerID, CustomerName: o.CustomerName, Spent: decimal.Zero}
			byID[o.CustomerID] = cr
		}
		cr.Orders++
		cr.Spent = cr.Spent.Add(o.Total)
	}

	out := make([]CustomerRanking, 0, len(byID))
	for _, cr := range byID {
		out = append(out, *cr)
	}
	sortCustomers(out)
	return truncate(out, limit), nil
}

// OrdersInPeriod lists every order in the period, cancelled ones included,
// ordered by creation time.
func (s *Service) OrdersInPeriod(ctx context.Context, p Period) ([]OrderLine, error) {
	orders, err := s.src.List(ctx, p.Filter())
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	out := make([]OrderLine, len(orders))
	for i, o := range orders {
		out[i] = OrderLine{
			OrderID:        o.ID,
			CustomerName:   o.CustomerName,
			RestaurantName: o.RestaurantName,
			Status:         o.Status,
			Total:          o.Total,
			CreatedAt:      o.CreatedAt,
		}
	}
	slices.SortStableFunc(out, func(a, b OrderLine) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.OrderID, b.OrderID))
	})
	return out, nil
}

// Summary runs all reports concurrently.
func (s *Service) Summary(ctx context.Context, p Period, limit int) (*Summary, error) {
	var sum Summary

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.Sales, err = s.SalesByRestaurant(ctx, p)
		return err
	})
	g.Go(func() (err error) {
		sum.TopProducts, err = s.TopProducts(ctx, limit)
		return err
	})
	g.Go(func() (err error) {
		sum.TopCustomers, err = s.TopCustomers(ctx, limit)
		return err
	})
	g.Go(func() (err error) {
		sum.Orders, err = s.OrdersInPeriod(ctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &sum, nil
}

func sortSales(s []RestaurantSales) {
	slices.SortFunc(s, func(a, b RestaurantSales) int {
		return cmp.Compare(a.RestaurantID, b.RestaurantID)
	})
}

func sortProducts(s []ProductSales) {
	slices.SortFunc(s, func(a, b ProductSales) int {
		return cmp.Or(cmp.Compare(b.Quantity, a.Quantity), cmp.Compare(a.ProductID, b.ProductID))
	})
}

func sortCustomers(s []CustomerRanking) {
	slices.SortFunc(s, func(a, b CustomerRanking) int {
		return cmp.Or(
			cmp.Compare(b.Orders, a.Orders),
			b.Spent.Cmp(a.Spent),
			cmp.Compare(a.CustomerID, b.CustomerID),
		)
	})
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
