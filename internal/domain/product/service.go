package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

// RestaurantGetter looks up the restaurant a product belongs to.
type RestaurantGetter interface {
	GetByID(ctx context.Context, id int64) (*restaurant.Restaurant, error)
}

// Service encapsulates product catalog maintenance.
type Service struct {
	products    Repository
	restaurants RestaurantGetter
}

// NewService creates a product Service.
func NewService(products Repository, restaurants RestaurantGetter) *Service {
	return &Service{
		products:    products,
		restaurants: restaurants,
	}
}

// Create validates the input, checks the owning restaurant exists and stores
// the product. New products are available unless stated otherwise.
func (s *Service) Create(ctx context.Context, in Input) (*Product, error) {
	category, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.restaurants.GetByID(ctx, in.RestaurantID); err != nil {
		return nil, err
	}

	p := &Product{Available: true}
	if in.Available != nil {
		p.Available = *in.Available
	}
	apply(p, in, category)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// Get returns a product by id.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.products.GetByID(ctx, id)
}

// Update replaces the writable fields of an existing product. Past order
// items keep the price they were sold at.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Product, error) {
	category, err := in.Validate()
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.RestaurantID != in.RestaurantID {
		if _, err := s.restaurants.GetByID(ctx, in.RestaurantID); err != nil {
			return nil, err
		}
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	apply(p, in, category)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, errors.Wrapf(err, "update product %d", id)
	}
	return p, nil
}

// Delete removes a product that no order references.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if fault.KindOf(err) != fault.KindInternal {
			return err
		}
		return errors.Wrapf(err, "delete product %d", id)
	}
	return nil
}

// ToggleAvailability flips the availability flag.
func (s *Service) ToggleAvailability(ctx context.Context, id int64) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Available = !p.Available
	if err := s.products.SetAvailable(ctx, id, p.Available); err != nil {
		return nil, errors.Wrapf(err, "set product %d available=%t", id, p.Available)
	}
	return p, nil
}

// ListByRestaurant returns the products of a restaurant, optionally
// filtered by availability.
func (s *Service) ListByRestaurant(ctx context.Context, restaurantID int64, available *bool) ([]Product, error) {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.products.List(ctx, Filter{RestaurantID: restaurantID, Available: available})
}

// ListByCategory returns available products of the given category.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	c, ok := restaurant.ParseCategory(category)
	if !ok {
		return nil, fault.Invalid("category", restaurant.CategoryMessage(), category)
	}
	available := true
	return s.products.List(ctx, Filter{Category: c, Available: &available})
}

// SearchByName returns available products whose name contains name.
func (s *Service) SearchByName(ctx context.Context, name string) ([]Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fault.Invalid("name", "is required", name)
	}
	available := true
	return s.products.List(ctx, Filter{Name: name, Available: &available})
}

func apply(p *Product, in Input, category restaurant.Category) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.Category = category
	p.RestaurantID = in.RestaurantID
}
