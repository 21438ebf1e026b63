package customer

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

// Customer is a registered marketplace customer. Customers are deactivated,
// never deleted.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	Active    bool
	CreatedAt time.Time
}

// Repository defines persistence operations for customers.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	ListActive(ctx context.Context) ([]Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// NotFound returns the error reported for an unknown customer id or email.
func NotFound(key any) error {
	return fault.NotFound("customer", key)
}

// EmailTaken returns the error reported when an email is already registered.
func EmailTaken(email string) error {
	return fault.Conflict("email %s is already registered", email)
}

// Input holds the writable customer fields.
type Input struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Normalize trims whitespace and lower-cases the email.
func (in Input) Normalize() Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}
}

// Validate checks field constraints and reports every invalid field at once.
func (in Input) Validate() error {
	v := &fault.ValidationError{}

	v.CheckLength("name", in.Name, 2, 100)
	if in.Email == "" {
		v.Add("email", "is required", in.Email)
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		v.Add("email", "must be a valid email address", in.Email)
	}
	v.CheckPhone("phone", in.Phone)
	if utf8.RuneCountInString(in.Address) > 255 {
		v.Add("address", "must be at most 255 characters", in.Address)
	}

	return v.Err()
}
