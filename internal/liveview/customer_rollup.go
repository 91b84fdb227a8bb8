package liveview

import (
	"sort"
	"sync"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

// Customer tiers derived from cumulative spend.
const (
	TierActive = "Active"
	TierVIP    = "VIP"
	TierElite  = "Elite"
)

// Spend thresholds, strict inequalities: spend must exceed the threshold.
const (
	vipThreshold   = 5_000
	eliteThreshold = 10_000
)

// CustomerRollup is one customer's lifetime value derived from the full
// order snapshot.
type CustomerRollup struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	FirstSeen  time.Time `json:"first_seen"`
	Spend      float64   `json:"spend"`
	Orders     int       `json:"orders"`
	Tier       string    `json:"tier"`
}

// TierFor classifies cumulative spend.
func TierFor(spend float64) string {
	switch {
	case spend > eliteThreshold:
		return TierElite
	case spend > vipThreshold:
		return TierVIP
	default:
		return TierActive
	}
}

// BuildCustomerRollups groups the order set by customer and accumulates
// lifetime value. Guest orders carry no customer reference and contribute
// to no entry. The result is ordered by spend, highest first.
func BuildCustomerRollups(orders []entity.Order) []CustomerRollup {
	byCustomer := make(map[string]*CustomerRollup)
	for _, o := range orders {
		if o.Customer == nil {
			continue
		}

		r, ok := byCustomer[o.Customer.ID]
		if !ok {
			r = &CustomerRollup{
				CustomerID: o.Customer.ID,
				Name:       o.Customer.Name,
				Email:      o.Customer.Email,
				FirstSeen:  o.CreatedAt,
			}
			byCustomer[o.Customer.ID] = r
		}

		r.Spend += o.TotalPrice
		r.Orders++
		r.Tier = TierFor(r.Spend)
		if o.CreatedAt.Before(r.FirstSeen) {
			r.FirstSeen = o.CreatedAt
		}
	}

	out := make([]CustomerRollup, 0, len(byCustomer))
	for _, r := range byCustomer {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// RollupView materializes the per-customer rollup table. It is recomputed
// wholesale on every snapshot refresh and never incrementally patched, so
// it cannot drift.
type RollupView struct {
	mu      sync.RWMutex
	rollups []CustomerRollup
}

// NewRollupView creates an empty rollup view.
func NewRollupView() *RollupView {
	return &RollupView{}
}

// Name implements View.
func (v *RollupView) Name() string { return "customer_rollup" }

// Apply is a no-op: incremental patching of lifetime values is exactly the
// drift this view exists to avoid.
func (v *RollupView) Apply(entity.Event) {}

// Rebuild recomputes the rollups from the snapshot.
func (v *RollupView) Rebuild(orders []entity.Order, _ time.Time) {
	rollups := BuildCustomerRollups(orders)
	v.mu.Lock()
	v.rollups = rollups
	v.mu.Unlock()
}

// Rollups returns the current table, highest spend first.
func (v *RollupView) Rollups() []CustomerRollup {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]CustomerRollup, len(v.rollups))
	copy(out, v.rollups)
	return out
}
