package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/logging"
)

// ProductRepo implements repository.ProductRepository on Postgres.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo creates the repository.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// FindAll returns the catalog ordered by name.
func (r *ProductRepo) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, price, image_url, category, stock
		 FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price,
			&p.ImageURL, &p.Category, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindByID returns one product or entity.ErrNotFound.
func (r *ProductRepo) FindByID(ctx context.Context, id entity.ProductID) (*entity.Product, error) {
	var p entity.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, image_url, category, stock
		 FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product %s: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts or replaces a product.
func (r *ProductRepo) Upsert(ctx context.Context, p entity.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, image_url, category, stock)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, description = EXCLUDED.description,
		   price = EXCLUDED.price, image_url = EXCLUDED.image_url,
		   category = EXCLUDED.category, stock = EXCLUDED.stock`,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock)
	if err != nil {
		return &entity.PersistenceError{Op: "upsert product", Err: err}
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id entity.ProductID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return &entity.PersistenceError{Op: "delete product", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Seed inserts the initial catalog if the table is empty.
func (r *ProductRepo) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range products {
		if err := r.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	logging.Info().Int("count", len(products)).Msg("seeded products")
	return nil
}
