package entity

import (
	"time"
)

// Event is a domain event carried on the event bus. Events are ephemeral:
// they are not persisted and exist only in transit to subscribers. Delivery
// is at-least-once, ordered per type per publisher, unordered across types.
type Event interface {
	EventType() string
}

// Catalog change actions carried by ProductCatalogChanged.
const (
	CatalogActionCreated = "created"
	CatalogActionUpdated = "updated"
	CatalogActionDeleted = "deleted"
)

// OrderCreated is published after an order has been durably persisted.
// Subscribers may assume the order is retrievable by query.
type OrderCreated struct {
	Order Order `json:"order"`
}

func (e OrderCreated) EventType() string { return "OrderCreated" }

// ProductCatalogChanged is published when the admin console mutates the
// product catalog.
type ProductCatalogChanged struct {
	Action    string    `json:"action"`
	ProductID ProductID `json:"product_id"`
}

func (e ProductCatalogChanged) EventType() string { return "ProductCatalogChanged" }

// CustomerJoined is published when a new customer registers.
type CustomerJoined struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

func (e CustomerJoined) EventType() string { return "CustomerJoined" }
