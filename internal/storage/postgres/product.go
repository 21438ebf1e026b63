package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

const (
	productColumns = `id, name, description, price, category, available, restaurant_id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products`

	createProductSQL = `INSERT INTO products (name, description, price, category, available, restaurant_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	updateProductSQL = `UPDATE products SET name = $2, description = $3, price = $4, category = $5,
		available = $6, restaurant_id = $7 WHERE id = $1`

	setProductAvailableSQL = `UPDATE products SET available = $2 WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.NotFound(id)
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// List returns products matching f ordered by ID.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	var w where
	if f.RestaurantID != 0 {
		w.add("restaurant_id = $%d", f.RestaurantID)
	}
	if f.Category != "" {
		w.add("category = $%d", string(f.Category))
	}
	if f.Available != nil {
		w.add("available = $%d", *f.Available)
	}
	if f.Name != "" {
		w.add("name ILIKE '%%' || $%d || '%%'", f.Name)
	}

	rows, err := r.pool.Query(ctx, listProductsSQL+w.String()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a product and assigns its ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.Name, p.Description, p.Price, string(p.Category), p.Available, p.RestaurantID,
	).Scan(&p.ID)
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return restaurant.NotFound(p.RestaurantID)
		}
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// Update stores the writable fields of p.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, string(p.Category), p.Available, p.RestaurantID,
	)
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return restaurant.NotFound(p.RestaurantID)
		}
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.NotFound(p.ID)
	}
	return nil
}

// SetAvailable sets the availability flag of a product.
func (r *ProductRepository) SetAvailable(ctx context.Context, id int64, available bool) error {
	tag, err := r.pool.Exec(ctx, setProductAvailableSQL, id, available)
	if err != nil {
		return fmt.Errorf("setting product %d available: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.NotFound(id)
	}
	return nil
}

// Delete removes a product. Products referenced by order items are kept.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return product.InUse(id)
		}
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.NotFound(id)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p        product.Product
		category string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &category, &p.Available, &p.RestaurantID)
	p.Category = restaurant.Category(category)
	return p, err
}
