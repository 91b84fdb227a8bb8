package liveview

import (
	"sort"
	"sync"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
)

// FeedView materializes the recent-orders feed: the newest orders, newest
// first, truncated to a fixed size.
type FeedView struct {
	size int

	mu     sync.RWMutex
	orders []entity.Order
}

// NewFeedView creates a feed keeping the newest size orders.
func NewFeedView(size int) *FeedView {
	if size <= 0 {
		size = 5
	}
	return &FeedView{size: size}
}

// Name implements View.
func (v *FeedView) Name() string { return "recent_orders" }

// Apply prepends a pushed order. The patch is idempotent per order id, so a
// duplicate delivery never produces two feed entries.
func (v *FeedView) Apply(event entity.Event) {
	created, ok := event.(entity.OrderCreated)
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for _, o := range v.orders {
		if o.ID == created.Order.ID {
			return
		}
	}
	v.orders = append([]entity.Order{created.Order}, v.orders...)
	if len(v.orders) > v.size {
		v.orders = v.orders[:v.size]
	}
}

// Rebuild replaces the feed with the newest orders from the snapshot.
func (v *FeedView) Rebuild(orders []entity.Order, _ time.Time) {
	sorted := make([]entity.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > v.size {
		sorted = sorted[:v.size]
	}

	v.mu.Lock()
	v.orders = sorted
	v.mu.Unlock()
}

// Orders returns the feed contents, newest first.
func (v *FeedView) Orders() []entity.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]entity.Order, len(v.orders))
	copy(out, v.orders)
	return out
}
