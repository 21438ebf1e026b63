package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

const (
	restaurantColumns = `id, name, category, address, phone, postal_code, delivery_fee, rating, active`

	createRestaurantSQL = `INSERT INTO restaurants
		(name, category, address, phone, postal_code, delivery_fee, rating, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	updateRestaurantSQL = `UPDATE restaurants SET name = ?, category = ?, address = ?, phone = ?,
		postal_code = ?, delivery_fee = ?, rating = ? WHERE id = ?`
)

var _ restaurant.Repository = (*RestaurantRepository)(nil)

// RestaurantRepository implements restaurant.Repository backed by SQLite.
type RestaurantRepository struct {
	db *sql.DB
}

// NewRestaurantRepository returns a RestaurantRepository that uses db.
func NewRestaurantRepository(db *sql.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// GetByID returns a single restaurant by its identifier.
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*restaurant.Restaurant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)
	res, err := scanRestaurant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, restaurant.NotFound(id)
		}
		return nil, fmt.Errorf("getting restaurant %d: %w", id, err)
	}
	return &res, nil
}

// List returns restaurants matching f ordered by ID.
func (r *RestaurantRepository) List(ctx context.Context, f restaurant.Filter) ([]restaurant.Restaurant, error) {
	var w where
	if f.Category != "" {
		w.add("category = ?", string(f.Category))
	}
	if f.Active != nil {
		w.add("active = ?", *f.Active)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants`+w.String()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []restaurant.Restaurant
	for rows.Next() {
		res, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning restaurant: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Create inserts a restaurant and assigns its ID.
func (r *RestaurantRepository) Create(ctx context.Context, res *restaurant.Restaurant) error {
	result, err := r.db.ExecContext(ctx, createRestaurantSQL,
		res.Name, string(res.Category), res.Address, res.Phone, res.PostalCode,
		res.DeliveryFee, nullDecimal(res.Rating), res.Active,
	)
	if err != nil {
		return fmt.Errorf("creating restaurant: %w", err)
	}
	res.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading restaurant id: %w", err)
	}
	return nil
}

// Update stores the writable fields of res.
func (r *RestaurantRepository) Update(ctx context.Context, res *restaurant.Restaurant) error {
	result, err := r.db.ExecContext(ctx, updateRestaurantSQL,
		res.Name, string(res.Category), res.Address, res.Phone, res.PostalCode,
		res.DeliveryFee, nullDecimal(res.Rating), res.ID,
	)
	if err != nil {
		return fmt.Errorf("updating restaurant %d: %w", res.ID, err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return restaurant.NotFound(res.ID)
	}
	return nil
}

// SetActive sets the active flag of a restaurant.
func (r *RestaurantRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE restaurants SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("setting restaurant %d active: %w", id, err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return restaurant.NotFound(id)
	}
	return nil
}

func scanRestaurant(s scanner) (restaurant.Restaurant, error) {
	var (
		res      restaurant.Restaurant
		category string
		rating   decimal.NullDecimal
	)
	err := s.Scan(
		&res.ID, &res.Name, &category, &res.Address, &res.Phone, &res.PostalCode,
		&res.DeliveryFee, &rating, &res.Active,
	)
	res.Category = restaurant.Category(category)
	if rating.Valid {
		res.Rating = &rating.Decimal
	}
	return res, err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
