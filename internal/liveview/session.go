package liveview

import (
	"context"
	"sync"
	"time"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/eventbus"
	"github.com/maisonluxe/storefront/internal/logging"
)

// Session is the console's identity context. Views render the same data
// whether or not someone is signed in; the session only gates actions.
type Session struct {
	mu       sync.RWMutex
	customer *entity.Customer
	signedAt time.Time
}

// NewSession creates a signed-out session.
func NewSession() *Session {
	return &Session{}
}

// SignIn binds the session to a customer.
func (s *Session) SignIn(c entity.Customer) {
	s.mu.Lock()
	s.customer = &c
	s.signedAt = time.Now().UTC()
	s.mu.Unlock()
}

// SignOut clears the identity. The session object stays usable.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.customer = nil
	s.signedAt = time.Time{}
	s.mu.Unlock()
}

// Customer returns the signed-in customer, or nil.
func (s *Session) Customer() *entity.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.customer == nil {
		return nil
	}
	c := *s.customer
	return &c
}

// SignedIn reports whether an identity is bound.
func (s *Session) SignedIn() bool {
	return s.Customer() != nil
}

// EventStream is a source of live domain events. Connect blocks until a
// connection is established or ctx is done; the returned channel closes
// when the connection drops.
type EventStream interface {
	Connect(ctx context.Context) (<-chan eventbus.Envelope, error)
}

// ConnectionManager feeds one event stream into a set of aggregators. Every
// event is dispatched to all aggregators in arrival order. On reconnect it
// forces an immediate reconciliation on each aggregator, since events
// published during the gap are gone for good.
type ConnectionManager struct {
	stream  EventStream
	backoff time.Duration

	mu   sync.Mutex
	aggs []*Aggregator
}

// NewConnectionManager creates a manager over the given stream.
func NewConnectionManager(stream EventStream) *ConnectionManager {
	return &ConnectionManager{
		stream:  stream,
		backoff: time.Second,
	}
}

// Attach registers an aggregator to receive events. Call before Run.
func (m *ConnectionManager) Attach(a *Aggregator) {
	m.mu.Lock()
	m.aggs = append(m.aggs, a)
	m.mu.Unlock()
}

// Run connects, dispatches, and reconnects until ctx is canceled.
func (m *ConnectionManager) Run(ctx context.Context) error {
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		events, err := m.stream.Connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn().Err(err).Dur("retry_in", m.backoff).Msg("event stream connect failed")
			if !m.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		if !first {
			// Events published while disconnected are lost. Resync.
			m.reconcileAll()
		}
		first = false
		logging.Info().Msg("event stream connected")

		if !m.dispatch(ctx, events) {
			return ctx.Err()
		}
		logging.Warn().Dur("retry_in", m.backoff).Msg("event stream dropped")
		if !m.sleep(ctx) {
			return ctx.Err()
		}
	}
}

// dispatch fans events out until the channel closes. Returns false when ctx
// ended the loop.
func (m *ConnectionManager) dispatch(ctx context.Context, events <-chan eventbus.Envelope) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case env, ok := <-events:
			if !ok {
				return true
			}
			m.mu.Lock()
			aggs := m.aggs
			m.mu.Unlock()
			for _, a := range aggs {
				a.HandleEvent(env.Event)
			}
		}
	}
}

func (m *ConnectionManager) reconcileAll() {
	m.mu.Lock()
	aggs := m.aggs
	m.mu.Unlock()
	for _, a := range aggs {
		a.ReconcileNow()
	}
}

func (m *ConnectionManager) sleep(ctx context.Context) bool {
	t := time.NewTimer(m.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
