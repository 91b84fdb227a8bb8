// Package cart implements the client-held shopping cart: a mutable set of
// (product, quantity) lines with idempotent merge semantics, persisted to
// durable storage on every mutation and rehydrated on load.
package cart

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/logging"
)

// Price is a numeric unit price. A JSON string is rejected outright: a
// formatting bug upstream must surface as an error, not be parsed away.
type Price float64

// UnmarshalJSON rejects string-typed input.
func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return entity.NewValidationError("price", "must be numeric, got string")
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return entity.NewValidationError("price", "must be numeric")
	}
	*p = Price(v)
	return nil
}

// Line is one cart entry. Display fields are captured at add-time; they are
// a snapshot, not a live link into the catalog.
type Line struct {
	ProductID entity.ProductID `json:"product_id"`
	Name      string           `json:"name"`
	ImageURL  string           `json:"image_url"`
	Category  string           `json:"category"`
	UnitPrice Price            `json:"unit_price"`
	Quantity  int              `json:"quantity"`
}

// Subtotal returns the line's contribution to the cart total.
func (l Line) Subtotal() float64 {
	return float64(l.UnitPrice) * float64(l.Quantity)
}

// Manager owns one client's cart. All mutations persist before returning;
// a persisted cart that fails to decode is discarded and the cart starts
// empty.
type Manager struct {
	key     string
	storage Storage

	mu    sync.Mutex
	lines []Line
}

// NewManager creates a cart over storage, keyed by the client identity.
func NewManager(key string, storage Storage) *Manager {
	return &Manager{key: key, storage: storage}
}

// Load rehydrates the cart from storage. A missing record means an empty
// cart; a corrupt record is discarded with a warning, never an error.
func (m *Manager) Load(ctx context.Context) error {
	data, err := m.storage.Get(ctx, m.key)
	if err != nil {
		if err == entity.ErrNotFound {
			return nil
		}
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		logging.Warn().Err(&entity.CartPersistenceError{Err: err}).
			Str("cart", m.key).Msg("discarding corrupt stored cart")
		return m.persistLocked(ctx, nil)
	}
	m.lines = lines
	return nil
}

// Add merges product into the cart. Adding a product already present sums
// the quantities onto the existing line; it never creates a second line.
func (m *Manager) Add(ctx context.Context, product entity.Product, qty int) error {
	if product.ID.IsZero() {
		return entity.NewValidationError("product_id", "required")
	}
	if qty < 1 {
		return entity.NewValidationError("quantity", "must be at least 1")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lines {
		if m.lines[i].ProductID == product.ID {
			m.lines[i].Quantity += qty
			return m.persistLocked(ctx, m.lines)
		}
	}

	m.lines = append(m.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		Category:  product.Category,
		UnitPrice: Price(product.Price),
		Quantity:  qty,
	})
	return m.persistLocked(ctx, m.lines)
}

// Remove deletes the line for id. Removing an absent product is a no-op.
func (m *Manager) Remove(ctx context.Context, id entity.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lines {
		if m.lines[i].ProductID == id {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return m.persistLocked(ctx, m.lines)
		}
	}
	return nil
}

// SetQuantity applies a signed delta to the line for id. A resulting
// quantity of zero or less deletes the line; a quantity-zero line is never
// stored. Adjusting an absent product is a no-op.
func (m *Manager) SetQuantity(ctx context.Context, id entity.ProductID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lines {
		if m.lines[i].ProductID != id {
			continue
		}
		m.lines[i].Quantity += delta
		if m.lines[i].Quantity <= 0 {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
		}
		return m.persistLocked(ctx, m.lines)
	}
	return nil
}

// Clear empties the cart, e.g. after checkout completes.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	return m.persistLocked(ctx, nil)
}

// Total returns the cart's monetary total.
func (m *Manager) Total() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total float64
	for _, l := range m.lines {
		total += l.Subtotal()
	}
	return total
}

// Count returns the total unit count across all lines.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, l := range m.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart contents in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// persistLocked writes lines under the cart key. Callers hold m.mu. The
// in-memory lines are committed first so a storage hiccup degrades
// durability, not the session.
func (m *Manager) persistLocked(ctx context.Context, lines []Line) error {
	m.lines = lines

	data, err := json.Marshal(lines)
	if err != nil {
		return &entity.CartPersistenceError{Err: fmt.Errorf("marshal cart: %w", err)}
	}
	if err := m.storage.Set(ctx, m.key, data); err != nil {
		return &entity.CartPersistenceError{Err: err}
	}
	return nil
}
