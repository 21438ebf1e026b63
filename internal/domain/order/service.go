package order

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

// ErrEmptyItems is returned when an order or quote has no items.
var ErrEmptyItems = &fault.ValidationError{
	Message: "items required",
	Fields:  []fault.FieldError{{Field: "items", Message: "at least one item is required"}},
}

// CustomerGetter looks up customers.
type CustomerGetter interface {
	GetByID(ctx context.Context, id int64) (*customer.Customer, error)
}

// RestaurantGetter looks up restaurants.
type RestaurantGetter interface {
	GetByID(ctx context.Context, id int64) (*restaurant.Restaurant, error)
}

// ProductGetter fetches products in one batch.
type ProductGetter interface {
	GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error)
}

// ItemRequest is a requested product and quantity.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	CustomerID      int64
	RestaurantID    int64
	DeliveryAddress string
	Items           []ItemRequest
}

func (r PlaceRequest) validate() error {
	v := &fault.ValidationError{}
	if r.CustomerID <= 0 {
		v.Add("customerId", "is required", r.CustomerID)
	}
	if r.RestaurantID <= 0 {
		v.Add("restaurantId", "is required", r.RestaurantID)
	}
	v.CheckLength("deliveryAddress", r.DeliveryAddress, 5, 200)
	validateItems(v, r.Items)
	return v.Err()
}

// QuoteRequest holds the input for pricing an order without placing it.
type QuoteRequest struct {
	RestaurantID int64
	Items        []ItemRequest
}

func (r QuoteRequest) validate() error {
	v := &fault.ValidationError{}
	if r.RestaurantID <= 0 {
		v.Add("restaurantId", "is required", r.RestaurantID)
	}
	validateItems(v, r.Items)
	return v.Err()
}

func validateItems(v *fault.ValidationError, items []ItemRequest) {
	for i, it := range items {
		if it.ProductID <= 0 {
			v.Add("items["+strconv.Itoa(i)+"].productId", "is required", it.ProductID)
		}
	}
}

// Service encapsulates order placement, pricing and lifecycle rules.
type Service struct {
	customers   CustomerGetter
	restaurants RestaurantGetter
	products    ProductGetter
	orders      Repository
	calc        Calculator
	now         func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	customers CustomerGetter,
	restaurants RestaurantGetter,
	products ProductGetter,
	orders Repository,
	calc Calculator,
) *Service {
	return &Service{
		customers:   customers,
		restaurants: restaurants,
		products:    products,
		orders:      orders,
		calc:        calc,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Place validates the request against the catalog, prices it, persists the
// order with its items in one unit and returns the stored order with display
// names resolved.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	c, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "get customer")
	}
	if !c.Active {
		return nil, fault.Rule("customer %q is inactive", c.Name)
	}

	r, err := s.activeRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	q, err := s.calc.Price(*r, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		CustomerID:      c.ID,
		RestaurantID:    r.ID,
		DeliveryAddress: req.DeliveryAddress,
		Status:          StatusPending,
		Subtotal:        q.Subtotal,
		DeliveryFee:     q.DeliveryFee,
		Total:           q.Total,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           make([]Item, len(q.Lines)),
	}
	for i, l := range q.Lines {
		o.Items[i] = Item{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	placed, err := s.orders.GetByID(ctx, o.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "reload order %d", o.ID)
	}
	return placed, nil
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// UpdateStatus moves an order to the status named by raw. Terminal orders
// are immutable and unknown or illegal targets are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (*Order, error) {
	return s.orders.UpdateStatus(ctx, id, func(o *Order) error {
		if o.Status.Terminal() {
			return fault.Rule("order %d is %s: terminal states are immutable", o.ID, o.Status)
		}
		next, ok := ParseStatus(raw)
		if !ok {
			return fault.Rule("unknown order status %q", raw)
		}
		if !CanTransition(o.Status, next) {
			return fault.Rule("order %d cannot move from %s to %s", o.ID, o.Status, next)
		}
		o.Status = next
		o.UpdatedAt = s.now()
		return nil
	})
}

// Cancel cancels an order that has not left the restaurant yet.
func (s *Service) Cancel(ctx context.Context, id int64) (*Order, error) {
	return s.orders.UpdateStatus(ctx, id, func(o *Order) error {
		switch o.Status {
		case StatusCancelled:
			return fault.Rule("order %d is already cancelled", o.ID)
		case StatusDelivered:
			return fault.Rule("order %d was delivered: delivered orders cannot be cancelled", o.ID)
		case StatusOutForDelivery:
			return fault.Rule("order %d is out for delivery and can no longer be cancelled", o.ID)
		}
		o.Status = StatusCancelled
		o.UpdatedAt = s.now()
		return nil
	})
}

// Quote prices the request without persisting anything.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	r, err := s.activeRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	return s.calc.Price(*r, lines)
}

// ListByCustomer returns the orders of an existing customer.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, errors.Wrap(err, "get customer")
	}
	return s.orders.List(ctx, Filter{CustomerID: customerID})
}

// ListByRestaurant returns the orders of an existing restaurant.
func (s *Service) ListByRestaurant(ctx context.Context, restaurantID int64) ([]Order, error) {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return nil, errors.Wrap(err, "get restaurant")
	}
	return s.orders.List(ctx, Filter{RestaurantID: restaurantID})
}

// ListByStatus returns the orders in the status named by raw.
func (s *Service) ListByStatus(ctx context.Context, raw string) ([]Order, error) {
	st, ok := ParseStatus(raw)
	if !ok {
		return nil, fault.Invalid("status", "unknown order status", raw)
	}
	return s.orders.List(ctx, Filter{Status: st})
}

// ListPaged returns one page of orders matching f.
func (s *Service) ListPaged(ctx context.Context, f Filter, req PageRequest) (*Page, error) {
	if req.Sort == "" {
		req.Sort = SortID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items, total, err := s.orders.ListPaged(ctx, f, req)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return NewPage(items, req, total), nil
}

func (s *Service) activeRestaurant(ctx context.Context, id int64) (*restaurant.Restaurant, error) {
	r, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get restaurant")
	}
	if !r.Active {
		return nil, fault.Rule("restaurant %q is not accepting orders", r.Name)
	}
	return r, nil
}

// resolveLines fetches every requested product in one batch. Missing
// products are reported before any pricing rule is checked.
func (s *Service) resolveLines(ctx context.Context, items []ItemRequest) ([]Line, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	lines := make([]Line, len(items))
	for i, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, product.NotFound(it.ProductID)
		}
		lines[i] = Line{Product: p, Quantity: it.Quantity}
	}
	return lines, nil
}
