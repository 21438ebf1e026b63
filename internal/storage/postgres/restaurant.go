package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

const (
	restaurantColumns = `id, name, category, address, phone, postal_code, delivery_fee, rating, active`

	getRestaurantByIDSQL = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

	listRestaurantsSQL = `SELECT ` + restaurantColumns + ` FROM restaurants`

	createRestaurantSQL = `INSERT INTO restaurants
		(name, category, address, phone, postal_code, delivery_fee, rating, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	updateRestaurantSQL = `UPDATE restaurants SET name = $2, category = $3, address = $4, phone = $5,
		postal_code = $6, delivery_fee = $7, rating = $8 WHERE id = $1`

	setRestaurantActiveSQL = `UPDATE restaurants SET active = $2 WHERE id = $1`
)

var _ restaurant.Repository = (*RestaurantRepository)(nil)

// RestaurantRepository implements restaurant.Repository backed by PostgreSQL.
type RestaurantRepository struct {
	pool *pgxpool.Pool
}

// NewRestaurantRepository returns a RestaurantRepository that uses the given pool.
func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

// GetByID returns a single restaurant by its identifier.
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*restaurant.Restaurant, error) {
	rows, err := r.pool.Query(ctx, getRestaurantByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting restaurant %d: %w", id, err)
	}

	res, err := pgx.CollectExactlyOneRow(rows, scanRestaurant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		w.add("category = $%d", string(f.Category))
	}
	if f.Active != nil {
		w.add("active = $%d", *f.Active)
	}

	rows, err := r.pool.Query(ctx, listRestaurantsSQL+w.String()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}
	return pgx.CollectRows(rows, scanRestaurant)
}

// Create inserts a restaurant and assigns its ID.
func (r *RestaurantRepository) Create(ctx context.Context, res *restaurant.Restaurant) error {
	err := r.pool.QueryRow(ctx, createRestaurantSQL,
		res.Name, string(res.Category), res.Address, res.Phone, res.PostalCode,
		res.DeliveryFee, nullDecimal(res.Rating), res.Active,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("creating restaurant: %w", err)
	}
	return nil
}

// Update stores the writable fields of res.
func (r *RestaurantRepository) Update(ctx context.Context, res *restaurant.Restaurant) error {
	tag, err := r.pool.Exec(ctx, updateRestaurantSQL,
		res.ID, res.Name, string(res.Category), res.Address, res.Phone, res.PostalCode,
		res.DeliveryFee, nullDecimal(res.Rating),
	)
	if err != nil {
		return fmt.Errorf("updating restaurant %d: %w", res.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return restaurant.NotFound(res.ID)
	}
	return nil
}

// SetActive sets the active flag of a restaurant.
func (r *RestaurantRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, setRestaurantActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("setting restaurant %d active: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return restaurant.NotFound(id)
	}
	return nil
}

func scanRestaurant(row pgx.CollectableRow) (restaurant.Restaurant, error) {
	var (
		res      restaurant.Restaurant
		category string
		rating   decimal.NullDecimal
	)
	err := row.Scan(
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
