package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/logging"
	"github.com/maisonluxe/storefront/internal/messaging"
	"github.com/maisonluxe/storefront/internal/repository"
)

// totalTolerance is the allowed float drift between the client's displayed
// total and the server-side recomputation.
const totalTolerance = 0.01

// CreateOrderItem is one requested line item.
type CreateOrderItem struct {
	ProductID entity.ProductID `json:"product_id" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	Price     float64          `json:"price" validate:"gte=0"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	ImageURL  string           `json:"image_url"`
}

// CreateOrderInput is the order creation request. ClientTotal, when set, is
// only a display-consistency check; the authoritative total is always
// recomputed server-side.
type CreateOrderInput struct {
	Customer    *entity.OrderCustomer `json:"customer"`
	Items       []CreateOrderItem     `json:"items" validate:"required,min=1,dive"`
	ClientTotal *float64              `json:"client_total" validate:"omitempty,gte=0"`
}

// OrderService owns the order write path: validate, persist, then publish.
type OrderService struct {
	orders    repository.OrderRepository
	publisher messaging.Publisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewOrderService wires the write path.
func NewOrderService(orders repository.OrderRepository, publisher messaging.Publisher) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
}

// CreateOrder validates and persists a new order, then publishes
// OrderCreated. The event is published only after the durable write
// succeeds; a subscriber never observes an order that is not queryable.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	order := &entity.Order{
		ID:        uuid.New().String(),
		Customer:  input.Customer,
		CreatedAt: s.now().UTC(),
	}
	for _, item := range input.Items {
		line := entity.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		}
		order.Items = append(order.Items, line)
		order.TotalPrice += line.Subtotal()
	}

	if input.ClientTotal != nil && math.Abs(*input.ClientTotal-order.TotalPrice) > totalTolerance {
		return nil, entity.NewValidationError("client_total", "does not match computed total")
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	logging.Info().Str("order_id", order.ID).Float64("total", order.TotalPrice).
		Int("items", len(order.Items)).Msg("order persisted")

	// Delivery failures are absorbed here: the order exists either way and
	// the live views repair themselves on their next reconciliation.
	if err := s.publisher.Publish(ctx, entity.OrderCreated{Order: *order}); err != nil {
		logging.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish OrderCreated")
	}

	return order, nil
}

func (s *OrderService) validateInput(input CreateOrderInput) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return entity.NewValidationError(strings.ToLower(f.Field()), "failed rule "+f.Tag())
		}
		return entity.NewValidationError("", err.Error())
	}
	for _, item := range input.Items {
		// The canonical id is mandatory; there is no fallback field.
		if item.ProductID.IsZero() {
			return entity.NewValidationError("product_id", "missing canonical product identifier")
		}
	}
	return nil
}

// Orders returns the full order snapshot, newest first.
func (s *OrderService) Orders(ctx context.Context) ([]entity.Order, error) {
	return s.orders.FindAll(ctx)
}

// RecentOrders returns the latest orders.
func (s *OrderService) RecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	return s.orders.FindRecent(ctx, limit)
}

// MarkPaid settles the payment flag. The transition is monotonic.
func (s *OrderService) MarkPaid(ctx context.Context, orderID string) error {
	return s.orders.MarkPaid(ctx, orderID)
}

// MarkDelivered settles the fulfillment flag. The transition is monotonic.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID string) error {
	return s.orders.MarkDelivered(ctx, orderID)
}
