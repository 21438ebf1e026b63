package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

// ErrConcurrentUpdate is returned by stores using optimistic versioning when
// the order changed between read and write.
var ErrConcurrentUpdate = &fault.ConflictError{Message: "order was modified concurrently, retry the request"}

// Order is a placed customer order. Monetary fields are snapshots taken at
// placement: Subtotal is the sum of item subtotals and Total is Subtotal plus
// DeliveryFee.
type Order struct {
	ID              int64
	CustomerID      int64
	CustomerName    string
	RestaurantID    int64
	RestaurantName  string
	DeliveryAddress string
	Status          Status
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	// Version increases on every status change.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []Item
}

// Item is a single order line. UnitPrice is copied from the product when the
// order is placed and never follows later price changes.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Filter narrows order listings. Zero values match everything; From and To
// bound the creation time inclusively and apply independently.
type Filter struct {
	Status       Status
	CustomerID   int64
	RestaurantID int64
	From         *time.Time
	To           *time.Time
}

// Match reports whether o satisfies the filter.
func (f Filter) Match(o *Order) bool {
	switch {
	case f.Status != "" && o.Status != f.Status:
		return false
	case f.CustomerID != 0 && o.CustomerID != f.CustomerID:
		return false
	case f.RestaurantID != 0 && o.RestaurantID != f.RestaurantID:
		return false
	case f.From != nil && o.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && o.CreatedAt.After(*f.To):
		return false
	}
	return true
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create stores the order header and its items atomically and assigns
	// their ids. Either everything is written or nothing is.
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order with items and display names resolved.
	GetByID(ctx context.Context, id int64) (*Order, error)
	// List returns matching orders ordered by creation time.
	List(ctx context.Context, f Filter) ([]Order, error)
	// ListPaged returns one page of matching orders and the total match count.
	ListPaged(ctx context.Context, f Filter, p PageRequest) ([]Order, int64, error)
	// UpdateStatus serializes a read-modify-write of a single order: it loads
	// the current state, lets fn mutate Status and UpdatedAt, and persists
	// the result with an incremented Version. An error from fn aborts the
	// update and is returned unchanged.
	UpdateStatus(ctx context.Context, id int64, fn func(o *Order) error) (*Order, error)
}

// NotFound returns the error reported for an unknown order id.
func NotFound(id int64) error {
	return fault.NotFound("order", id)
}
