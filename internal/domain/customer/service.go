package customer

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

// Service encapsulates customer registration and maintenance.
type Service struct {
	repo Repository
}

// NewService creates a customer Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates the input, rejects duplicate emails and creates an
// active customer.
func (s *Service) Register(ctx context.Context, in Input) (*Customer, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	c := &Customer{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Active:  true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create customer")
	}
	return c, nil
}

// Get returns a customer by id.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns a customer by email, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.repo.GetByEmail(ctx, Input{Email: email}.Normalize().Email)
}

// ListActive returns all active customers.
func (s *Service) ListActive(ctx context.Context) ([]Customer, error) {
	return s.repo.ListActive(ctx)
}

// Update replaces the writable fields of an existing customer.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Customer, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Email != in.Email {
		if err := s.ensureEmailFree(ctx, in.Email, id); err != nil {
			return nil, err
		}
	}

	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, errors.Wrapf(err, "update customer %d", id)
	}
	return c, nil
}

// ToggleActive flips the active flag and returns the updated customer.
func (s *Service) ToggleActive(ctx context.Context, id int64) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Active = !c.Active
	if err := s.repo.SetActive(ctx, id, c.Active); err != nil {
		return nil, errors.Wrapf(err, "set customer %d active=%t", id, c.Active)
	}
	return c, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, self int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case fault.KindOf(err) == fault.KindNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "check email")
	case existing.ID != self:
		return EmailTaken(email)
	default:
		return nil
	}
}
