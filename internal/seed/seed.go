// Package seed loads a demo catalog of customers, restaurants and products
// through the domain services, so seeded data obeys the same validation as
// API writes.
package seed

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

// Catalog is the seed file layout.
type Catalog struct {
	Customers   []Customer   `json:"customers"`
	Restaurants []Restaurant `json:"restaurants"`
}

// Customer is a seeded customer. Inactive customers are deactivated right
// after registration.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

// Restaurant is a seeded restaurant with its menu.
type Restaurant struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	PostalCode  string           `json:"postalCode"`
	DeliveryFee decimal.Decimal  `json:"deliveryFee"`
	Rating      *decimal.Decimal `json:"rating"`
	Active      *bool            `json:"active"`
	Products    []Product        `json:"products"`
}

// Product is a seeded menu item.
type Product struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   *bool           `json:"available"`
}

// Parse decodes a catalog file.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	return &c, nil
}

// Services are the domain services the seeder writes through.
type Services struct {
	Customers   *customer.Service
	Restaurants *restaurant.Service
	Products    *product.Service
}

// Stats counts what Apply created and skipped.
type Stats struct {
	Customers        int
	SkippedCustomers int
	Restaurants      int
	Products         int
	// SkippedCatalog is set when restaurants already existed.
	SkippedCatalog bool
}

// Apply writes the catalog. Customers whose email is already registered are
// skipped. Restaurants and products are only written into an empty store,
// so running Apply twice does not duplicate the menu.
func Apply(ctx context.Context, s Services, c *Catalog) (Stats, error) {
	lg := zctx.From(ctx)
	var st Stats

	for _, in := range c.Customers {
		created, err := s.Customers.Register(ctx, customer.Input{
			Name:    in.Name,
			Email:   in.Email,
			Phone:   in.Phone,
			Address: in.Address,
		})
		if fault.KindOf(err) == fault.KindConflict {
			lg.Debug("Customer exists, skipping", zap.String("email", in.Email))
			st.SkippedCustomers++
			continue
		}
		if err != nil {
			return st, errors.Wrapf(err, "register customer %s", in.Email)
		}
		if !in.Active {
			if _, err := s.Customers.ToggleActive(ctx, created.ID); err != nil {
				return st, errors.Wrapf(err, "deactivate customer %d", created.ID)
			}
		}
		st.Customers++
	}

	existing, err := s.Restaurants.List(ctx, restaurant.Filter{})
	if err != nil {
		return st, errors.Wrap(err, "list restaurants")
	}
	if len(existing) > 0 {
		lg.Info("Restaurants exist, skipping catalog", zap.Int("restaurants", len(existing)))
		st.SkippedCatalog = true
		return st, nil
	}

	for _, in := range c.Restaurants {
		r, err := s.Restaurants.Create(ctx, restaurant.Input{
			Name:        in.Name,
			Category:    in.Category,
			Address:     in.Address,
			Phone:       in.Phone,
			PostalCode:  in.PostalCode,
			DeliveryFee: in.DeliveryFee,
			Rating:      in.Rating,
		})
		if err != nil {
			return st, errors.Wrapf(err, "create restaurant %q", in.Name)
		}
		if in.Active != nil && !*in.Active {
			if _, err := s.Restaurants.SetActive(ctx, r.ID, false); err != nil {
				return st, errors.Wrapf(err, "deactivate restaurant %d", r.ID)
			}
		}
		st.Restaurants++

		for _, p := range in.Products {
			if _, err := s.Products.Create(ctx, product.Input{
				Name:         p.Name,
				Description:  p.Description,
				Price:        p.Price,
				Category:     p.Category,
				Available:    p.Available,
				RestaurantID: r.ID,
			}); err != nil {
				return st, errors.Wrapf(err, "create product %q", p.Name)
			}
			st.Products++
		}
		lg.Info("Seeded restaurant",
			zap.Int64("id", r.ID),
			zap.String("name", r.Name),
			zap.Int("products", len(in.Products)),
		)
	}

	return st, nil
}
