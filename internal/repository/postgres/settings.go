package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maisonluxe/storefront/internal/entity"
)

// SettingsRepo implements repository.SettingsRepository on Postgres.
// The site settings live in a single guarded row.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo creates the repository.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the settings record.
func (r *SettingsRepo) Get(ctx context.Context) (*entity.Settings, error) {
	var s entity.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT store_name, currency, support_email, maintenance_mode, free_shipping_min
		 FROM site_settings WHERE id = 1`).
		Scan(&s.StoreName, &s.Currency, &s.SupportEmail, &s.MaintenanceMode, &s.FreeShippingMin)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return &s, nil
}

// Update replaces the settings record.
func (r *SettingsRepo) Update(ctx context.Context, s entity.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE site_settings SET store_name = $1, currency = $2, support_email = $3,
		   maintenance_mode = $4, free_shipping_min = $5 WHERE id = 1`,
		s.StoreName, s.Currency, s.SupportEmail, s.MaintenanceMode, s.FreeShippingMin)
	if err != nil {
		return &entity.PersistenceError{Op: "update settings", Err: err}
	}
	return nil
}
