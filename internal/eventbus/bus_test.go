package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

func waitEvent(t *testing.T, sub *Subscription) Envelope {
	t.Helper()
	select {
	case env, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Envelope{}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := New()
	defer bus.Close()

	ctx := context.Background()
	a, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe a: %v", err)
	}
	defer a.Close()
	b, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe b: %v", err)
	}
	defer b.Close()

	want := entity.OrderCreated{Order: entity.Order{ID: "ord-1", TotalPrice: 99}}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for name, sub := range map[string]*Subscription{"a": a, "b": b} {
		env := waitEvent(t, sub)
		got, ok := env.Event.(entity.OrderCreated)
		if !ok {
			t.Fatalf("subscriber %s: got %T, want OrderCreated", name, env.Event)
		}
		if got.Order.ID != want.Order.ID || got.Order.TotalPrice != want.Order.TotalPrice {
			t.Errorf("subscriber %s: got order %+v, want %+v", name, got.Order, want.Order)
		}
		if env.ID == "" {
			t.Errorf("subscriber %s: envelope missing transit id", name)
		}
	}
}

func TestPublishOrderPreservedPerSubscriber(t *testing.T) {
	bus := New()
	defer bus.Close()

	ctx := context.Background()
	sub, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	const n = 50
	for i := 0; i < n; i++ {
		order := entity.Order{ID: string(rune('a'+i%26)) + "-" + time.Now().String(), TotalPrice: float64(i)}
		if err := bus.Publish(ctx, entity.OrderCreated{Order: order}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	for i := 0; i < n; i++ {
		env := waitEvent(t, sub)
		got := env.Event.(entity.OrderCreated)
		if got.Order.TotalPrice != float64(i) {
			t.Fatalf("event %d out of order: got total %v", i, got.Order.TotalPrice)
		}
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := New()
	defer bus.Close()

	ctx := context.Background()
	slow, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe slow: %v", err)
	}
	defer slow.Close()
	fast, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe fast: %v", err)
	}
	defer fast.Close()

	// The slow subscriber never drains. Publishing far past any channel
	// buffer must still complete and reach the fast subscriber.
	const n = 2000
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			if err := bus.Publish(ctx, entity.OrderCreated{Order: entity.Order{ID: "x", TotalPrice: float64(i)}}); err != nil {
				t.Errorf("publish %d: %v", i, err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("publishing blocked on a slow subscriber")
	}

	for i := 0; i < n; i++ {
		waitEvent(t, fast)
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	bus := New()
	defer bus.Close()

	ctx := context.Background()
	sub, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sub.Close()
	sub.Close() // idempotent

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel never closed after Close")
		}
	}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		payload   string
		wantErr   bool
		check     func(t *testing.T, e entity.Event)
	}{
		{
			name:      "order created",
			eventType: "OrderCreated",
			payload:   `{"order":{"id":"ord-7","total_price":120.5}}`,
			check: func(t *testing.T, e entity.Event) {
				oc := e.(entity.OrderCreated)
				if oc.Order.ID != "ord-7" || oc.Order.TotalPrice != 120.5 {
					t.Errorf("got %+v", oc.Order)
				}
			},
		},
		{
			name:      "catalog changed",
			eventType: "ProductCatalogChanged",
			payload:   `{"action":"deleted","product_id":"prod-001"}`,
			check: func(t *testing.T, e entity.Event) {
				pc := e.(entity.ProductCatalogChanged)
				if pc.Action != entity.CatalogActionDeleted || pc.ProductID != "prod-001" {
					t.Errorf("got %+v", pc)
				}
			},
		},
		{
			name:      "customer joined",
			eventType: "CustomerJoined",
			payload:   `{"name":"Ada","email":"ada@example.com"}`,
			check: func(t *testing.T, e entity.Event) {
				cj := e.(entity.CustomerJoined)
				if cj.Name != "Ada" || cj.Email != "ada@example.com" {
					t.Errorf("got %+v", cj)
				}
			},
		},
		{
			name:      "unknown type",
			eventType: "Mystery",
			payload:   `{}`,
			wantErr:   true,
		},
		{
			name:      "corrupt payload",
			eventType: "OrderCreated",
			payload:   `{"order":`,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := DecodeEvent(tt.eventType, []byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			tt.check(t, e)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	event := entity.ProductCatalogChanged{Action: entity.CatalogActionUpdated, ProductID: "prod-002"}
	msg, err := Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if msg.Metadata.Get("event_type") != "ProductCatalogChanged" {
		t.Errorf("metadata type = %q", msg.Metadata.Get("event_type"))
	}

	env, err := Unmarshal(msg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, ok := env.Event.(entity.ProductCatalogChanged)
	if !ok {
		t.Fatalf("got %T", env.Event)
	}
	if got != event {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, event)
	}
}
