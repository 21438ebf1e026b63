package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

const (
	productColumns = `id, name, description, price, category, available, restaurant_id`

	createProductSQL = `INSERT INTO products (name, description, price, category, available, restaurant_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	updateProductSQL = `UPDATE products SET name = ?, description = ?, price = ?, category = ?,
		available = ?, restaurant_id = ? WHERE id = ?`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by SQLite.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository returns a ProductRepository that uses db.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.NotFound(id)
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE id IN `+in(len(ids))+` ORDER BY id`, int64Args(ids)...)
}

// List returns products matching f ordered by ID.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	var w where
	if f.RestaurantID != 0 {
		w.add("restaurant_id = ?", f.RestaurantID)
	}
	if f.Category != "" {
		w.add("category = ?", string(f.Category))
	}
	if f.Available != nil {
		w.add("available = ?", *f.Available)
	}
	if f.Name != "" {
		w.add("name LIKE '%' || ? || '%'", f.Name)
	}
	return r.list(ctx, `SELECT `+productColumns+` FROM products`+w.String()+` ORDER BY id`, w.args...)
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]product.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a product and assigns its ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	res, err := r.db.ExecContext(ctx, createProductSQL,
		p.Name, p.Description, p.Price, string(p.Category), p.Available, p.RestaurantID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return restaurant.NotFound(p.RestaurantID)
		}
		return fmt.Errorf("creating product: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading product id: %w", err)
	}
	return nil
}

// Update stores the writable fields of p.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	res, err := r.db.ExecContext(ctx, updateProductSQL,
		p.Name, p.Description, p.Price, string(p.Category), p.Available, p.RestaurantID, p.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return restaurant.NotFound(p.RestaurantID)
		}
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	return notFoundIfNone(res, p.ID)
}

// SetAvailable sets the availability flag of a product.
func (r *ProductRepository) SetAvailable(ctx context.Context, id int64, available bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET available = ? WHERE id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("setting product %d available: %w", id, err)
	}
	return notFoundIfNone(res, id)
}

// Delete removes a product. Products referenced by order items are kept.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return product.InUse(id)
		}
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	return notFoundIfNone(res, id)
}

func notFoundIfNone(res sql.Result, id int64) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return product.NotFound(id)
	}
	return nil
}

func scanProduct(s scanner) (product.Product, error) {
	var (
		p        product.Product
		category string
	)
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &category, &p.Available, &p.RestaurantID)
	p.Category = restaurant.Category(category)
	return p, err
}
