package liveview

import (
	"sync"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

// TimeBucket is one calendar day's totals within the trailing window,
// keyed in the view's fixed reference timezone.
type TimeBucket struct {
	Day     time.Time `json:"day"`
	Revenue float64   `json:"revenue"`
	Orders  int       `json:"orders"`
}

// AnalyticsView materializes the analytics rollup: a trailing window of
// daily revenue/volume buckets, including zero-valued days, oldest first.
type AnalyticsView struct {
	windowDays int
	loc        *time.Location

	mu          sync.RWMutex
	windowStart time.Time // midnight of the oldest bucket, in loc
	buckets     map[string]*TimeBucket
	avgOrder    float64
}

// NewAnalyticsView creates the rollup over windowDays calendar days in the
// given reference timezone.
func NewAnalyticsView(windowDays int, loc *time.Location) *AnalyticsView {
	if windowDays <= 0 {
		windowDays = 7
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsView{
		windowDays: windowDays,
		loc:        loc,
		buckets:    make(map[string]*TimeBucket),
	}
}

// Name implements View.
func (v *AnalyticsView) Name() string { return "analytics_rollup" }

// Apply folds a pushed order into its day's bucket. Orders outside the
// window established by the last rebuild are ignored; the window itself
// only moves on reconciliation.
func (v *AnalyticsView) Apply(event entity.Event) {
	created, ok := event.(entity.OrderCreated)
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	key := v.dayKey(created.Order.CreatedAt)
	if b, ok := v.buckets[key]; ok {
		b.Revenue += created.Order.TotalPrice
		b.Orders++
	}
}

// Rebuild recomputes the window ending on now's calendar day. Every day in
// the window gets a bucket, empty days included.
func (v *AnalyticsView) Rebuild(orders []entity.Order, now time.Time) {
	today := midnight(now.In(v.loc))
	start := today.AddDate(0, 0, -(v.windowDays - 1))

	buckets := make(map[string]*TimeBucket, v.windowDays)
	for i := 0; i < v.windowDays; i++ {
		day := start.AddDate(0, 0, i)
		buckets[day.Format(time.DateOnly)] = &TimeBucket{Day: day}
	}

	var revenue float64
	for _, o := range orders {
		revenue += o.TotalPrice
		if b, ok := buckets[v.dayKey(o.CreatedAt)]; ok {
			b.Revenue += o.TotalPrice
			b.Orders++
		}
	}

	avg := 0.0
	if len(orders) > 0 {
		avg = revenue / float64(len(orders))
	}

	v.mu.Lock()
	v.windowStart = start
	v.buckets = buckets
	v.avgOrder = avg
	v.mu.Unlock()
}

// Buckets returns the window's buckets ordered oldest to newest. Before the
// first rebuild it returns nil.
func (v *AnalyticsView) Buckets() []TimeBucket {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.windowStart.IsZero() {
		return nil
	}
	out := make([]TimeBucket, 0, v.windowDays)
	for i := 0; i < v.windowDays; i++ {
		day := v.windowStart.AddDate(0, 0, i)
		if b, ok := v.buckets[day.Format(time.DateOnly)]; ok {
			out = append(out, *b)
		}
	}
	return out
}

// AvgOrderValue returns the snapshot-wide average order value.
func (v *AnalyticsView) AvgOrderValue() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.avgOrder
}

func (v *AnalyticsView) dayKey(t time.Time) string {
	return t.In(v.loc).Format(time.DateOnly)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
