package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

type fakeOrderRepo struct {
	orders    []entity.Order
	createErr error
	paid      []string
	delivered []string
}

func (f *fakeOrderRepo) Create(_ context.Context, order *entity.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context) ([]entity.Order, error) {
	return f.orders, nil
}

func (f *fakeOrderRepo) FindRecent(_ context.Context, limit int) ([]entity.Order, error) {
	if limit > len(f.orders) {
		limit = len(f.orders)
	}
	return f.orders[:limit], nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, id string) error {
	f.paid = append(f.paid, id)
	return nil
}

func (f *fakeOrderRepo) MarkDelivered(_ context.Context, id string) error {
	f.delivered = append(f.delivered, id)
	return nil
}

type capturePublisher struct {
	events     []entity.Event
	publishErr error
}

func (p *capturePublisher) Publish(_ context.Context, event entity.Event) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.events = append(p.events, event)
	return nil
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		Items: []CreateOrderItem{
			{ProductID: "prod-001", Name: "Scarf", Price: 4899, Quantity: 2},
			{ProductID: "prod-005", Name: "Hoops", Price: 6499, Quantity: 1},
		},
	}
}

func TestCreateOrderComputesTotalAndPublishes(t *testing.T) {
	repo := &fakeOrderRepo{}
	pub := &capturePublisher{}
	svc := NewOrderService(repo, pub)
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

	order, err := svc.CreateOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	wantTotal := 4899*2 + 6499.0
	if order.TotalPrice != wantTotal {
		t.Errorf("total = %v, want %v", order.TotalPrice, wantTotal)
	}
	if order.ID == "" {
		t.Error("order id not assigned")
	}
	if len(repo.orders) != 1 {
		t.Fatalf("persisted %d orders, want 1", len(repo.orders))
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	oc, ok := pub.events[0].(entity.OrderCreated)
	if !ok {
		t.Fatalf("published %T, want OrderCreated", pub.events[0])
	}
	if oc.Order.ID != order.ID {
		t.Errorf("published order %q, persisted %q", oc.Order.ID, order.ID)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	tolerant := 16296.995
	wrong := 9999.0
	negative := -1.0

	tests := []struct {
		name    string
		mutate  func(in *CreateOrderInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(*CreateOrderInput) {}, wantErr: false},
		{name: "no items", mutate: func(in *CreateOrderInput) { in.Items = nil }, wantErr: true},
		{name: "zero quantity", mutate: func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, wantErr: true},
		{name: "negative quantity", mutate: func(in *CreateOrderInput) { in.Items[0].Quantity = -2 }, wantErr: true},
		{name: "negative price", mutate: func(in *CreateOrderInput) { in.Items[0].Price = -5 }, wantErr: true},
		{name: "missing product id", mutate: func(in *CreateOrderInput) { in.Items[1].ProductID = "" }, wantErr: true},
		{name: "missing name", mutate: func(in *CreateOrderInput) { in.Items[0].Name = "" }, wantErr: true},
		{name: "client total within tolerance", mutate: func(in *CreateOrderInput) { in.ClientTotal = &tolerant }, wantErr: false},
		{name: "client total mismatch", mutate: func(in *CreateOrderInput) { in.ClientTotal = &wrong }, wantErr: true},
		{name: "client total negative", mutate: func(in *CreateOrderInput) { in.ClientTotal = &negative }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeOrderRepo{}
			pub := &capturePublisher{}
			svc := NewOrderService(repo, pub)

			in := validInput()
			tt.mutate(&in)
			_, err := svc.CreateOrder(context.Background(), in)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !entity.IsValidation(err) {
					t.Errorf("got %T, want ValidationError", err)
				}
				if len(repo.orders) != 0 {
					t.Error("rejected order was persisted")
				}
				if len(pub.events) != 0 {
					t.Error("rejected order was published")
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
		})
	}
}

func TestCreateOrderNoEventOnPersistenceFailure(t *testing.T) {
	repo := &fakeOrderRepo{createErr: &entity.PersistenceError{Op: "insert order", Err: errors.New("disk full")}}
	pub := &capturePublisher{}
	svc := NewOrderService(repo, pub)

	_, err := svc.CreateOrder(context.Background(), validInput())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var pe *entity.PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("got %T, want PersistenceError", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events after failed write, want 0", len(pub.events))
	}
}

func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	repo := &fakeOrderRepo{}
	pub := &capturePublisher{publishErr: &entity.TransportError{Err: errors.New("broker down")}}
	svc := NewOrderService(repo, pub)

	order, err := svc.CreateOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order == nil || len(repo.orders) != 1 {
		t.Fatal("order not persisted despite publish failure")
	}
}

func TestGuestOrderHasNoCustomer(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewOrderService(repo, &capturePublisher{})

	order, err := svc.CreateOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Customer != nil {
		t.Errorf("guest order has customer %+v", order.Customer)
	}
	if order.CustomerID() != "" {
		t.Errorf("guest CustomerID() = %q, want empty", order.CustomerID())
	}
}
