package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/logging"
	"github.com/maisonluxe/storefront/internal/messaging"
	"github.com/maisonluxe/storefront/internal/repository"
)

// StoreService covers the catalog, customer registration, and settings,
// the storefront surfaces around the order pipeline.
type StoreService struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	settings  repository.SettingsRepository
	publisher messaging.Publisher
	now       func() time.Time
}

// NewStoreService wires the storefront surfaces.
func NewStoreService(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	settings repository.SettingsRepository,
	publisher messaging.Publisher,
) *StoreService {
	return &StoreService{
		products:  products,
		customers: customers,
		settings:  settings,
		publisher: publisher,
		now:       time.Now,
	}
}

// Products returns the catalog.
func (s *StoreService) Products(ctx context.Context) ([]entity.Product, error) {
	return s.products.FindAll(ctx)
}

// Product returns one product by its canonical identifier.
func (s *StoreService) Product(ctx context.Context, id entity.ProductID) (*entity.Product, error) {
	if id.IsZero() {
		return nil, entity.NewValidationError("product_id", "missing canonical product identifier")
	}
	return s.products.FindByID(ctx, id)
}

// SaveProduct creates or updates a product and announces the change.
func (s *StoreService) SaveProduct(ctx context.Context, p entity.Product) error {
	if p.ID.IsZero() {
		return entity.NewValidationError("product_id", "missing canonical product identifier")
	}

	action := entity.CatalogActionUpdated
	if _, err := s.products.FindByID(ctx, p.ID); err != nil {
		action = entity.CatalogActionCreated
	}

	if err := s.products.Upsert(ctx, p); err != nil {
		return err
	}
	s.announce(ctx, entity.ProductCatalogChanged{Action: action, ProductID: p.ID})
	return nil
}

// DeleteProduct removes a product and announces the change.
func (s *StoreService) DeleteProduct(ctx context.Context, id entity.ProductID) error {
	if id.IsZero() {
		return entity.NewValidationError("product_id", "missing canonical product identifier")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.announce(ctx, entity.ProductCatalogChanged{Action: entity.CatalogActionDeleted, ProductID: id})
	return nil
}

// RegisterCustomer creates a customer and publishes CustomerJoined.
func (s *StoreService) RegisterCustomer(ctx context.Context, name, email string) (*entity.Customer, error) {
	if name == "" {
		return nil, entity.NewValidationError("name", "required")
	}
	if email == "" {
		return nil, entity.NewValidationError("email", "required")
	}

	c := &entity.Customer{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		JoinedAt: s.now().UTC(),
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	s.announce(ctx, entity.CustomerJoined{Name: c.Name, Email: c.Email, JoinedAt: c.JoinedAt})
	return c, nil
}

// Settings returns the site settings record.
func (s *StoreService) Settings(ctx context.Context) (*entity.Settings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings replaces the site settings record.
func (s *StoreService) UpdateSettings(ctx context.Context, settings entity.Settings) error {
	return s.settings.Update(ctx, settings)
}

func (s *StoreService) announce(ctx context.Context, event entity.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.Error().Err(err).Str("event", event.EventType()).Msg("failed to publish event")
	}
}
