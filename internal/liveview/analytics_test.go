package liveview

import (
	"testing"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

func TestAnalyticsRebuildZeroFillsWindow(t *testing.T) {
	v := NewAnalyticsView(7, time.UTC)
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

	orders := []entity.Order{
		orderAt("o1", 1000, time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)),
		orderAt("o2", 500, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)),
		orderAt("o3", 700, time.Date(2026, 8, 25, 23, 59, 0, 0, time.UTC)),
		orderAt("o4", 300, time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)),
		// Outside the window; contributes to no bucket.
		orderAt("old", 9999, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
	}
	v.Rebuild(orders, now)

	buckets := v.Buckets()
	if len(buckets) != 7 {
		t.Fatalf("len = %d, want 7", len(buckets))
	}

	// Oldest to newest: Aug 22 .. Aug 28.
	if !buckets[0].Day.Equal(time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first bucket day = %v", buckets[0].Day)
	}
	if !buckets[6].Day.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last bucket day = %v", buckets[6].Day)
	}

	wantRevenue := []float64{300, 0, 0, 700, 0, 0, 1500}
	wantOrders := []int{1, 0, 0, 1, 0, 0, 2}
	for i := range buckets {
		if buckets[i].Revenue != wantRevenue[i] || buckets[i].Orders != wantOrders[i] {
			t.Errorf("bucket %d = {%.0f %d}, want {%.0f %d}",
				i, buckets[i].Revenue, buckets[i].Orders, wantRevenue[i], wantOrders[i])
		}
	}
}

func TestAnalyticsBucketsInConfiguredTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	v := NewAnalyticsView(7, loc)

	// 2026-08-28 02:00 UTC is still 2026-08-27 in New York.
	late := orderAt("late", 400, time.Date(2026, 8, 28, 2, 0, 0, 0, time.UTC))
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, loc)
	v.Rebuild([]entity.Order{late}, now)

	buckets := v.Buckets()
	last := buckets[len(buckets)-1]
	prev := buckets[len(buckets)-2]
	if last.Orders != 0 {
		t.Errorf("order counted on UTC day, not reference-timezone day")
	}
	if prev.Orders != 1 || prev.Revenue != 400 {
		t.Errorf("Aug 27 bucket = {%.0f %d}, want {400 1}", prev.Revenue, prev.Orders)
	}
}

func TestAnalyticsApplyFoldsIntoExistingBucket(t *testing.T) {
	v := NewAnalyticsView(7, time.UTC)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	v.Rebuild(nil, now)

	v.Apply(entity.OrderCreated{Order: orderAt("o1", 250, now)})
	// An order outside the current window is ignored until the next rebuild.
	v.Apply(entity.OrderCreated{Order: orderAt("o2", 999, now.AddDate(0, 0, 3))})

	buckets := v.Buckets()
	last := buckets[len(buckets)-1]
	if last.Revenue != 250 || last.Orders != 1 {
		t.Errorf("today bucket = {%.0f %d}, want {250 1}", last.Revenue, last.Orders)
	}
	var total float64
	for _, b := range buckets {
		total += b.Revenue
	}
	if total != 250 {
		t.Errorf("window total = %.0f, want 250", total)
	}
}

func TestAnalyticsApplyBeforeRebuildIsIgnored(t *testing.T) {
	v := NewAnalyticsView(7, time.UTC)
	v.Apply(entity.OrderCreated{Order: orderAt("early", 100, time.Now().UTC())})

	if got := v.Buckets(); got != nil {
		t.Errorf("buckets before first rebuild = %+v, want nil", got)
	}
}

func TestAnalyticsAvgOrderValue(t *testing.T) {
	v := NewAnalyticsView(7, time.UTC)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	v.Rebuild([]entity.Order{
		orderAt("o1", 100, now),
		orderAt("o2", 300, now),
	}, now)

	if got := v.AvgOrderValue(); got != 200 {
		t.Errorf("avg = %v, want 200", got)
	}

	v.Rebuild(nil, now)
	if got := v.AvgOrderValue(); got != 0 {
		t.Errorf("avg with no orders = %v, want 0", got)
	}
}
