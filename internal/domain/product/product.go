package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

var maxPrice = decimal.NewFromInt(500)

// Product represents a menu item sold by exactly one restaurant.
type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        decimal.Decimal
	Category     restaurant.Category
	Available    bool
	RestaurantID int64
}

// Filter narrows product listings. Zero values match everything.
type Filter struct {
	RestaurantID int64
	Category     restaurant.Category
	Available    *bool
	// Name matches products whose name contains it, case-insensitively.
	Name string
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	// GetByIDs returns the products that exist among ids. Missing ids are
	// omitted rather than reported.
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetAvailable(ctx context.Context, id int64, available bool) error
	// Delete removes a product. Products referenced by orders yield InUse.
	Delete(ctx context.Context, id int64) error
}

// NotFound returns the error reported for an unknown product id.
func NotFound(id int64) error {
	return fault.NotFound("product", id)
}

// InUse returns the error reported when deleting a product that orders
// still reference.
func InUse(id int64) error {
	return fault.Conflict("product %d is referenced by existing orders", id)
}

// Input holds the writable product fields.
type Input struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Category     string
	Available    *bool
	RestaurantID int64
}

// Validate checks field constraints and returns the canonical category.
func (in Input) Validate() (restaurant.Category, error) {
	v := &fault.ValidationError{}

	v.CheckLength("name", in.Name, 2, 100)
	if len(strings.TrimSpace(in.Description)) > 500 {
		v.Add("description", "must be at most 500 characters", in.Description)
	}
	if !in.Price.IsPositive() || in.Price.GreaterThan(maxPrice) {
		v.Add("price", "must be greater than 0.00 and at most 500.00", in.Price.StringFixed(2))
	}
	category, ok := restaurant.ParseCategory(in.Category)
	if !ok {
		v.Add("category", restaurant.CategoryMessage(), in.Category)
	}
	if in.RestaurantID <= 0 {
		v.Add("restaurantId", "is required", in.RestaurantID)
	}

	return category, v.Err()
}
