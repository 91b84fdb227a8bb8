package liveview

import (
	"sync"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

// KPISnapshot is the dashboard's headline numbers. The distinct-customer
// count is only trustworthy after a reconciliation: a pushed event can tell
// us a customer id is new to this process, not new to history.
type KPISnapshot struct {
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	Customers     int     `json:"customers"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// KPIView materializes the dashboard KPI totals.
type KPIView struct {
	mu      sync.RWMutex
	revenue float64
	orders  int
	seen    map[string]struct{}
}

// NewKPIView creates an empty KPI view.
func NewKPIView() *KPIView {
	return &KPIView{seen: make(map[string]struct{})}
}

// Name implements View.
func (v *KPIView) Name() string { return "dashboard_kpis" }

// Apply adds a pushed order into the running totals. The customer set grows
// only for ids not yet seen in the current window; duplicates of the same
// event may still transiently double-count revenue, which the next
// reconciliation corrects.
func (v *KPIView) Apply(event entity.Event) {
	created, ok := event.(entity.OrderCreated)
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.fold(created.Order)
}

// Rebuild replaces the totals with ones computed purely from the snapshot.
func (v *KPIView) Rebuild(orders []entity.Order, _ time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.revenue = 0
	v.orders = 0
	v.seen = make(map[string]struct{}, len(orders))
	for _, o := range orders {
		v.fold(o)
	}
}

func (v *KPIView) fold(o entity.Order) {
	v.revenue += o.TotalPrice
	v.orders++
	if id := o.CustomerID(); id != "" {
		v.seen[id] = struct{}{}
	}
}

// Snapshot returns the current KPI values.
func (v *KPIView) Snapshot() KPISnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := KPISnapshot{
		Revenue:   v.revenue,
		Orders:    v.orders,
		Customers: len(v.seen),
	}
	if s.Orders > 0 {
		s.AvgOrderValue = s.Revenue / float64(s.Orders)
	}
	return s
}
