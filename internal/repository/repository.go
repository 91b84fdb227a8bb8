package repository

import (
	"context"

	"github.com/maisonluxe/storefront/internal/entity"
)

// ProductRepository handles persistence for catalog products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id entity.ProductID) (*entity.Product, error)
	Upsert(ctx context.Context, p entity.Product) error
	Delete(ctx context.Context, id entity.ProductID) error
	// Seed inserts the initial catalog if no products exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// OrderRepository handles persistence for orders. Orders are immutable
// after creation except the settlement flags.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	// FindAll returns the full order set, newest first. This is the
	// authoritative snapshot the live views reconcile against.
	FindAll(ctx context.Context) ([]entity.Order, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Order, error)
	MarkPaid(ctx context.Context, orderID string) error
	MarkDelivered(ctx context.Context, orderID string) error
}

// CustomerRepository handles persistence for registered customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	FindByEmail(ctx context.Context, email string) (*entity.Customer, error)
}

// SettingsRepository stores the single site settings record.
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.Settings, error)
	Update(ctx context.Context, s entity.Settings) error
}
