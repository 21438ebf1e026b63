package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
)

const (
	customerColumns = `id, name, email, phone, address, active, created_at`

	createCustomerSQL = `INSERT INTO customers (name, email, phone, address, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	updateCustomerSQL = `UPDATE customers SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by SQLite.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository returns a CustomerRepository that uses db.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail returns the customer registered with email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *CustomerRepository) getOne(ctx context.Context, cond string, key any) (*customer.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE `+cond, key)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.NotFound(key)
		}
		return nil, fmt.Errorf("getting customer %v: %w", key, err)
	}
	return &c, nil
}

// ListActive returns all active customers ordered by ID.
func (r *CustomerRepository) ListActive(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a customer and assigns its ID and creation time.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, createCustomerSQL,
		c.Name, c.Email, c.Phone, c.Address, c.Active, formatTime(c.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return customer.EmailTaken(c.Email)
		}
		return fmt.Errorf("creating customer: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading customer id: %w", err)
	}
	return nil
}

// Update stores the writable fields of c.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	res, err := r.db.ExecContext(ctx, updateCustomerSQL, c.Name, c.Email, c.Phone, c.Address, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.EmailTaken(c.Email)
		}
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return customer.NotFound(c.ID)
	}
	return nil
}

// SetActive sets the active flag of a customer.
func (r *CustomerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE customers SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("setting customer %d active: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return customer.NotFound(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (customer.Customer, error) {
	var (
		c       customer.Customer
		created string
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Active, &created); err != nil {
		return c, err
	}
	var err error
	c.CreatedAt, err = parseTime(created)
	return c, err
}
