package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

// DefaultMaxQuantity is the per-line quantity cap used when none is configured.
const DefaultMaxQuantity = 100

// InvalidQuantityError indicates a line quantity outside 1..Max.
type InvalidQuantityError struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Max         int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d for product %q must be between 1 and %d", e.Quantity, e.ProductName, e.Max)
}

// Kind implements fault.Kinded.
func (e *InvalidQuantityError) Kind() fault.Kind { return fault.KindRule }

// ProductUnavailableError indicates a product that is not currently sold.
type ProductUnavailableError struct {
	ProductID   int64
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available", e.ProductName)
}

// Kind implements fault.Kinded.
func (e *ProductUnavailableError) Kind() fault.Kind { return fault.KindRule }

// ProductRestaurantMismatchError indicates a product sold by another restaurant.
type ProductRestaurantMismatchError struct {
	ProductID      int64
	ProductName    string
	RestaurantID   int64
	RestaurantName string
}

func (e *ProductRestaurantMismatchError) Error() string {
	return fmt.Sprintf("product %q does not belong to restaurant %q", e.ProductName, e.RestaurantName)
}

// Kind implements fault.Kinded.
func (e *ProductRestaurantMismatchError) Kind() fault.Kind { return fault.KindRule }

// Line is a product with the requested quantity.
type Line struct {
	Product  product.Product
	Quantity int
}

// LineQuote is the priced form of a Line.
type LineQuote struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Quote is a priced order preview.
type Quote struct {
	RestaurantID int64
	Subtotal     decimal.Decimal
	DeliveryFee  decimal.Decimal
	Total        decimal.Decimal
	Lines        []LineQuote
}

// Calculator prices order lines against a restaurant. It has no side effects.
type Calculator struct {
	// MaxQuantity caps a single line. Zero means DefaultMaxQuantity.
	MaxQuantity int
}

// Price checks every line and computes subtotal, delivery fee and total with
// exact decimal arithmetic.
func (c Calculator) Price(r restaurant.Restaurant, lines []Line) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}

	maxQty := c.MaxQuantity
	if maxQty <= 0 {
		maxQty = DefaultMaxQuantity
	}

	q := &Quote{
		RestaurantID: r.ID,
		Subtotal:     decimal.Zero,
		DeliveryFee:  r.DeliveryFee,
		Lines:        make([]LineQuote, len(lines)),
	}
	for i, l := range lines {
		p := l.Product
		if l.Quantity < 1 || l.Quantity > maxQty {
			return nil, &InvalidQuantityError{ProductID: p.ID, ProductName: p.Name, Quantity: l.Quantity, Max: maxQty}
		}
		if !p.Available {
			return nil, &ProductUnavailableError{ProductID: p.ID, ProductName: p.Name}
		}
		if p.RestaurantID != r.ID {
			return nil, &ProductRestaurantMismatchError{
				ProductID:      p.ID,
				ProductName:    p.Name,
				RestaurantID:   r.ID,
				RestaurantName: r.Name,
			}
		}

		sub := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		q.Lines[i] = LineQuote{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
			Subtotal:    sub,
		}
		q.Subtotal = q.Subtotal.Add(sub)
	}
	q.Total = q.Subtotal.Add(q.DeliveryFee)

	return q, nil
}
