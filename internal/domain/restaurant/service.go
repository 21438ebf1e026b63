package restaurant

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

// Service encapsulates restaurant catalog maintenance.
type Service struct {
	repo Repository
}

// NewService creates a restaurant Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the input and stores an active restaurant.
func (s *Service) Create(ctx context.Context, in Input) (*Restaurant, error) {
	category, err := in.Validate()
	if err != nil {
		return nil, err
	}

	r := &Restaurant{Active: true}
	apply(r, in, category)
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create restaurant")
	}
	return r, nil
}

// Get returns a restaurant by id.
func (s *Service) Get(ctx context.Context, id int64) (*Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns restaurants matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]Restaurant, error) {
	return s.repo.List(ctx, f)
}

// ListByCategory returns active restaurants of the given category. The
// category name is matched case-insensitively.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Restaurant, error) {
	c, ok := ParseCategory(category)
	if !ok {
		return nil, fault.Invalid("category", CategoryMessage(), category)
	}
	active := true
	return s.repo.List(ctx, Filter{Category: c, Active: &active})
}

// Update replaces the writable fields of an existing restaurant.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Restaurant, error) {
	category, err := in.Validate()
	if err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(r, in, category)
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, errors.Wrapf(err, "update restaurant %d", id)
	}
	return r, nil
}

// SetActive sets the active flag and returns the updated restaurant.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*Restaurant, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, errors.Wrapf(err, "set restaurant %d active=%t", id, active)
	}
	r.Active = active
	return r, nil
}

func apply(r *Restaurant, in Input, category Category) {
	r.Name = strings.TrimSpace(in.Name)
	r.Category = category
	r.Address = strings.TrimSpace(in.Address)
	r.Phone = strings.TrimSpace(in.Phone)
	r.PostalCode = in.PostalCode
	r.DeliveryFee = in.DeliveryFee.Round(2)
	r.Rating = in.Rating
}
