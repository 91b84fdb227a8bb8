// Package liveview maintains the admin console's materialized read models:
// dashboard KPIs, the recent-orders feed, the analytics rollup, and the
// per-customer lifetime-value rollup. Each view merges pushed domain events
// with periodic authoritative snapshots; pushed state is optimistic only
// and periodically collapses to a value computed purely from the persisted
// order set.
package liveview

import (
	"context"
	"sync"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/logging"
)

// State is an aggregator's lifecycle phase.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateLive
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateReconciling:
		return "reconciling"
	default:
		return "uninitialized"
	}
}

// SnapshotSource fetches the authoritative full order set.
type SnapshotSource interface {
	FetchOrders(ctx context.Context) ([]entity.Order, error)
}

// View is one materialized read model. Apply makes an additive optimistic
// patch from a pushed event; Rebuild replaces the state with one computed
// purely from a snapshot. Implementations must be safe for concurrent use.
type View interface {
	Name() string
	Apply(event entity.Event)
	Rebuild(orders []entity.Order, now time.Time)
}

// Options tunes an Aggregator.
type Options struct {
	// ReconcileInterval is how often the view is rebuilt from a snapshot.
	ReconcileInterval time.Duration
	// FetchTimeout bounds one snapshot fetch. On timeout the view keeps
	// its last good state.
	FetchTimeout time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o *Options) withDefaults() {
	if o.ReconcileInterval <= 0 {
		o.ReconcileInterval = 30 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 10 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Aggregator runs one View through the Loading -> Live -> Reconciling -> Live
// lifecycle. Pushed events patch the view optimistically while Live; on every
// interval (or an explicit trigger, e.g. reconnect) the view is replaced with
// a pure function of the snapshot. A stale in-flight fetch is discarded when
// a newer reconciliation has already completed.
type Aggregator struct {
	view    View
	source  SnapshotSource
	opts    Options
	trigger chan struct{}

	mu      sync.Mutex
	state   State
	loaded  bool
	dirty   bool   // patched from events since the last rebuild
	started uint64 // reconciliation generations started
	applied uint64 // newest generation whose snapshot has been applied
	wg      sync.WaitGroup
}

// NewAggregator builds an aggregator for one view.
func NewAggregator(v View, source SnapshotSource, opts Options) *Aggregator {
	opts.withDefaults()
	return &Aggregator{
		view:    v,
		source:  source,
		opts:    opts,
		trigger: make(chan struct{}, 1),
		state:   StateUninitialized,
	}
}

// View returns the underlying read model.
func (a *Aggregator) View() View { return a.view }

// State returns the current lifecycle phase.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Loaded reports whether at least one snapshot has been applied.
func (a *Aggregator) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// Dirty reports whether the view holds event-derived state that has not yet
// been reconciled against a snapshot.
func (a *Aggregator) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// HandleEvent applies an optimistic patch. Events arriving before the first
// snapshot are dropped; the initial load covers them.
func (a *Aggregator) HandleEvent(event entity.Event) {
	a.mu.Lock()
	if !a.loaded {
		a.mu.Unlock()
		return
	}
	a.dirty = true
	a.mu.Unlock()

	a.view.Apply(event)
}

// ReconcileNow schedules an immediate reconciliation. Used on reconnect and
// visibility changes, where an event gap must not be silently ignored.
func (a *Aggregator) ReconcileNow() {
	select {
	case a.trigger <- struct{}{}:
	default:
	}
}

// Run drives the lifecycle until ctx is canceled. The initial snapshot load
// happens immediately; afterwards reconciliations run on the interval and on
// explicit triggers.
func (a *Aggregator) Run(ctx context.Context) error {
	a.setState(StateLoading)
	a.reconcile(ctx)

	ticker := time.NewTicker(a.opts.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			a.reconcile(ctx)
		case <-a.trigger:
			a.reconcile(ctx)
		}
	}
}

// reconcile starts one snapshot fetch. The fetch runs concurrently so a
// hung source cannot stall event handling; generation counters ensure a
// stale result never overwrites a newer one.
func (a *Aggregator) reconcile(ctx context.Context) {
	a.mu.Lock()
	a.started++
	gen := a.started
	if a.loaded {
		a.state = StateReconciling
	}
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		fetchCtx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
		defer cancel()

		orders, err := a.source.FetchOrders(fetchCtx)
		if err != nil {
			a.keepLastGood(&entity.SnapshotFetchError{Err: err})
			return
		}
		a.applySnapshot(gen, orders)
	}()
}

// keepLastGood records a failed fetch without clearing displayed data.
func (a *Aggregator) keepLastGood(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded && a.state == StateReconciling {
		a.state = StateLive
	}
	logging.Warn().Err(err).Str("view", a.view.Name()).
		Stringer("state", a.state).Msg("snapshot fetch failed, keeping last good state")
}

// applySnapshot replaces the view with the pure snapshot value, unless a
// newer reconciliation already completed.
func (a *Aggregator) applySnapshot(gen uint64, orders []entity.Order) {
	a.mu.Lock()
	if gen <= a.applied {
		a.mu.Unlock()
		logging.Debug().Str("view", a.view.Name()).Uint64("generation", gen).
			Msg("discarding stale snapshot result")
		return
	}
	a.applied = gen
	a.loaded = true
	a.dirty = false
	a.state = StateLive
	now := a.opts.Now()
	a.mu.Unlock()

	a.view.Rebuild(orders, now)

	logging.Debug().Str("view", a.view.Name()).Int("orders", len(orders)).
		Msg("view reconciled from snapshot")
}

func (a *Aggregator) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}
