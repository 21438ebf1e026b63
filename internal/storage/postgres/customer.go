package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
)

const (
	customerColumns = `id, name, email, phone, address, active, created_at`

	getCustomerByIDSQL = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	getCustomerByEmailSQL = `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	listActiveCustomersSQL = `SELECT ` + customerColumns + ` FROM customers WHERE active ORDER BY id`

	createCustomerSQL = `INSERT INTO customers (name, email, phone, address, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	updateCustomerSQL = `UPDATE customers SET name = $2, email = $3, phone = $4, address = $5 WHERE id = $1`

	setCustomerActiveSQL = `UPDATE customers SET active = $2 WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByIDSQL, id)
}

// GetByEmail returns the customer registered with email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByEmailSQL, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, sql string, key any) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, sql, key)
	if err != nil {
		return nil, fmt.Errorf("getting customer %v: %w", key, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.NotFound(key)
		}
		return nil, fmt.Errorf("getting customer %v: %w", key, err)
	}
	return &c, nil
}

// ListActive returns all active customers ordered by ID.
func (r *CustomerRepository) ListActive(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listActiveCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// Create inserts a customer and assigns its ID and creation time.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.pool.QueryRow(ctx, createCustomerSQL, c.Name, c.Email, c.Phone, c.Address, c.Active).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return customer.EmailTaken(c.Email)
		}
		return fmt.Errorf("creating customer: %w", err)
	}
	return nil
}

// Update stores the writable fields of c.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	tag, err := r.pool.Exec(ctx, updateCustomerSQL, c.ID, c.Name, c.Email, c.Phone, c.Address)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return customer.EmailTaken(c.Email)
		}
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.NotFound(c.ID)
	}
	return nil
}

// SetActive sets the active flag of a customer.
func (r *CustomerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, setCustomerActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("setting customer %d active: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.NotFound(id)
	}
	return nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Active, &c.CreatedAt)
	return c, err
}
