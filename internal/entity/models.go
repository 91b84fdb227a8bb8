package entity

import (
	"time"
)

// ProductID is the canonical product identifier used across the catalog,
// order line items, and cart lines. Components must not accept any other
// identifier field as a fallback.
type ProductID string

// IsZero reports whether the identifier is missing.
func (id ProductID) IsZero() bool { return id == "" }

func (id ProductID) String() string { return string(id) }

// Product represents a product in the catalog.
type Product struct {
	ID          ProductID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
}

// OrderItem is a line item within an order. Display fields are frozen at
// order time; they are a snapshot, not a live link into the catalog.
type OrderItem struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url"`
}

// Subtotal returns the line's contribution to the order total.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderCustomer is the customer reference embedded in an order.
// A nil reference means a guest order.
type OrderCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order represents a placed customer order. Orders are immutable after
// creation except for the two settlement flags, which only ever move
// false -> true.
type Order struct {
	ID          string         `json:"id"`
	Customer    *OrderCustomer `json:"customer,omitempty"`
	Items       []OrderItem    `json:"items"`
	TotalPrice  float64        `json:"total_price"`
	IsPaid      bool           `json:"is_paid"`
	IsDelivered bool           `json:"is_delivered"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CustomerID returns the owning customer id, or "" for guest orders.
func (o Order) CustomerID() string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.ID
}

// Customer represents a registered storefront customer.
type Customer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// Settings holds the storefront's site-wide settings record.
type Settings struct {
	StoreName       string  `json:"store_name"`
	Currency        string  `json:"currency"`
	SupportEmail    string  `json:"support_email"`
	MaintenanceMode bool    `json:"maintenance_mode"`
	FreeShippingMin float64 `json:"free_shipping_min"`
}
