package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maisonluxe/storefront/internal/entity"
)

// CustomerRepo implements repository.CustomerRepository on Postgres.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo creates the repository.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, joined_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Email, c.JoinedAt)
	if err != nil {
		return &entity.PersistenceError{Op: "insert customer", Err: err}
	}
	return nil
}

// FindByEmail returns one customer or entity.ErrNotFound.
func (r *CustomerRepo) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	var c entity.Customer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, joined_at FROM customers WHERE email = $1`, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}
	return &c, nil
}
