package liveview

import (
	"testing"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

func custOrder(id string, cust *entity.OrderCustomer, total float64, at time.Time) entity.Order {
	return entity.Order{ID: id, Customer: cust, TotalPrice: total, CreatedAt: at}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		spend float64
		want  string
	}{
		{0, TierActive},
		{4999, TierActive},
		{5000, TierActive}, // strict: must exceed the threshold
		{5000.01, TierVIP},
		{10000, TierVIP},
		{10000.01, TierElite},
		{12000, TierElite},
	}
	for _, tt := range tests {
		if got := TierFor(tt.spend); got != tt.want {
			t.Errorf("TierFor(%v) = %q, want %q", tt.spend, got, tt.want)
		}
	}
}

func TestBuildCustomerRollupsAccumulatesSpend(t *testing.T) {
	alice := &entity.OrderCustomer{ID: "cust-a", Name: "Alice", Email: "alice@example.com"}
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	rollups := BuildCustomerRollups([]entity.Order{
		custOrder("o1", alice, 6000, base.AddDate(0, 0, 5)),
		custOrder("o2", alice, 6000, base),
	})

	if len(rollups) != 1 {
		t.Fatalf("len = %d, want 1", len(rollups))
	}
	r := rollups[0]
	if r.Spend != 12000 || r.Orders != 2 {
		t.Errorf("rollup = {spend %v orders %d}", r.Spend, r.Orders)
	}
	if r.Tier != TierElite {
		t.Errorf("tier = %q, want %q", r.Tier, TierElite)
	}
	if !r.FirstSeen.Equal(base) {
		t.Errorf("first seen = %v, want earliest order time %v", r.FirstSeen, base)
	}
}

func TestBuildCustomerRollupsExcludesGuests(t *testing.T) {
	bob := &entity.OrderCustomer{ID: "cust-b", Name: "Bob"}
	now := time.Now()

	rollups := BuildCustomerRollups([]entity.Order{
		custOrder("o1", nil, 5000, now), // guest
		custOrder("o2", bob, 200, now),
	})

	if len(rollups) != 1 {
		t.Fatalf("len = %d, want 1", len(rollups))
	}
	if rollups[0].CustomerID != "cust-b" {
		t.Errorf("rollup for %q, want cust-b", rollups[0].CustomerID)
	}
	if rollups[0].Spend != 200 {
		t.Errorf("guest order leaked into rollup: spend %v", rollups[0].Spend)
	}
}

func TestBuildCustomerRollupsOrderedBySpend(t *testing.T) {
	now := time.Now()
	rollups := BuildCustomerRollups([]entity.Order{
		custOrder("o1", &entity.OrderCustomer{ID: "low"}, 100, now),
		custOrder("o2", &entity.OrderCustomer{ID: "high"}, 9000, now),
		custOrder("o3", &entity.OrderCustomer{ID: "mid"}, 800, now),
	})

	var got []string
	for _, r := range rollups {
		got = append(got, r.CustomerID)
	}
	want := []string{"high", "mid", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRollupViewIsRebuiltWholesale(t *testing.T) {
	v := NewRollupView()
	carol := &entity.OrderCustomer{ID: "cust-c", Name: "Carol"}
	now := time.Now()

	// Events never patch this view.
	v.Apply(entity.OrderCreated{Order: custOrder("o1", carol, 7000, now)})
	if got := v.Rollups(); len(got) != 0 {
		t.Fatalf("event patched rollup view: %+v", got)
	}

	v.Rebuild([]entity.Order{custOrder("o1", carol, 7000, now)}, now)
	got := v.Rollups()
	if len(got) != 1 || got[0].Tier != TierVIP {
		t.Errorf("rollups = %+v", got)
	}

	// A later snapshot fully replaces the table.
	v.Rebuild(nil, now)
	if got := v.Rollups(); len(got) != 0 {
		t.Errorf("stale rollups survived rebuild: %+v", got)
	}
}
