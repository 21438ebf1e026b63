package restaurant

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

var (
	maxDeliveryFee = decimal.NewFromInt(100)
	maxRating      = decimal.NewFromInt(5)
	postalCodeRe   = regexp.MustCompile(`^\d{5}-?\d{3}$`)
)

// Restaurant is a merchant that owns a product catalog.
type Restaurant struct {
	ID          int64
	Name        string
	Category    Category
	Address     string
	Phone       string
	PostalCode  string
	DeliveryFee decimal.Decimal
	// Rating is nil until the restaurant has been rated.
	Rating *decimal.Decimal
	Active bool
}

// Filter narrows restaurant listings. Zero values match everything.
type Filter struct {
	Category Category
	Active   *bool
}

// Repository defines persistence operations for restaurants.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Restaurant, error)
	List(ctx context.Context, f Filter) ([]Restaurant, error)
	Create(ctx context.Context, r *Restaurant) error
	Update(ctx context.Context, r *Restaurant) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// NotFound returns the error reported for an unknown restaurant id.
func NotFound(id int64) error {
	return fault.NotFound("restaurant", id)
}

// Input holds the writable restaurant fields.
type Input struct {
	Name        string
	Category    string
	Address     string
	Phone       string
	PostalCode  string
	DeliveryFee decimal.Decimal
	Rating      *decimal.Decimal
}

// Validate checks field constraints and returns the canonical category.
func (in Input) Validate() (Category, error) {
	v := &fault.ValidationError{}

	v.CheckLength("name", in.Name, 2, 100)
	category, ok := ParseCategory(in.Category)
	if !ok {
		v.Add("category", CategoryMessage(), in.Category)
	}
	if strings.TrimSpace(in.Address) == "" {
		v.Add("address", "is required", in.Address)
	}
	v.CheckPhone("phone", in.Phone)
	if in.PostalCode != "" && !postalCodeRe.MatchString(in.PostalCode) {
		v.Add("postalCode", "must match 00000-000", in.PostalCode)
	}
	if in.DeliveryFee.IsNegative() || in.DeliveryFee.GreaterThan(maxDeliveryFee) {
		v.Add("deliveryFee", "must be between 0.00 and 100.00", in.DeliveryFee.StringFixed(2))
	}
	if in.Rating != nil && (in.Rating.IsNegative() || in.Rating.GreaterThan(maxRating)) {
		v.Add("rating", "must be between 0.0 and 5.0", in.Rating.String())
	}

	return category, v.Err()
}
