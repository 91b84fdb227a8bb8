package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/maisonluxe/storefront/internal/cart"
	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/service"
)

// clientIDHeader identifies the client across the cart and session
// surfaces. The storefront generates the id client-side and sends it on
// every request.
const clientIDHeader = "X-Client-ID"

// CartHandler exposes the durable cart over HTTP. Each request rehydrates
// the client's cart from storage, applies the mutation, and persists.
type CartHandler struct {
	storage  cart.Storage
	orders   *service.OrderService
	sessions *Sessions
}

// NewCartHandler wires cart storage and the checkout path.
func NewCartHandler(storage cart.Storage, orders *service.OrderService, sessions *Sessions) *CartHandler {
	return &CartHandler{storage: storage, orders: orders, sessions: sessions}
}

// Routes registers the cart endpoints on the API subrouter.
func (h *CartHandler) Routes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleGetCart)
		r.Delete("/", h.handleClearCart)
		r.Post("/items", h.handleAddItem)
		r.Put("/items/{id}", h.handleAdjustItem)
		r.Delete("/items/{id}", h.handleRemoveItem)
		r.Post("/checkout", h.handleCheckout)
	})
}

// addItemRequest carries the product fields captured at add-time. The price
// must be numeric; a string-formatted price fails decoding.
type addItemRequest struct {
	ProductID entity.ProductID `json:"product_id"`
	Name      string           `json:"name"`
	ImageURL  string           `json:"image_url"`
	Category  string           `json:"category"`
	Price     cart.Price       `json:"price"`
	Quantity  int              `json:"quantity"`
}

type adjustItemRequest struct {
	Delta int `json:"delta"`
}

type cartResponse struct {
	Lines []cart.Line `json:"lines"`
	Total float64     `json:"total"`
	Count int         `json:"count"`
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	h.respond(w, m)
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	m, ok := h.load(w, r)
	if !ok {
		return
	}
	product := entity.Product{
		ID:       req.ProductID,
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Category: req.Category,
		Price:    float64(req.Price),
	}
	if err := m.Add(r.Context(), product, qty); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, m)
}

func (h *CartHandler) handleAdjustItem(w http.ResponseWriter, r *http.Request) {
	var req adjustItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	m, ok := h.load(w, r)
	if !ok {
		return
	}
	id := entity.ProductID(chi.URLParam(r, "id"))
	if err := m.SetQuantity(r.Context(), id, req.Delta); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, m)
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	id := entity.ProductID(chi.URLParam(r, "id"))
	if err := m.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, m)
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := m.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, m)
}

// handleCheckout turns the cart into an order. The signed-in customer, if
// any, owns the order; otherwise it is a guest order. The cart is cleared
// only after the order is durably created.
func (h *CartHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	key, ok := clientKey(w, r)
	if !ok {
		return
	}
	m, ok := h.load(w, r)
	if !ok {
		return
	}

	lines := m.Lines()
	if len(lines) == 0 {
		writeError(w, entity.NewValidationError("items", "cart is empty"))
		return
	}

	input := service.CreateOrderInput{}
	if sess, ok := h.sessions.Lookup(key); ok {
		if c := sess.Customer(); c != nil {
			input.Customer = &entity.OrderCustomer{ID: c.ID, Name: c.Name, Email: c.Email}
		}
	}
	for _, l := range lines {
		input.Items = append(input.Items, service.CreateOrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     float64(l.UnitPrice),
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := m.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// load rehydrates the request's cart. A missing client id is an error.
func (h *CartHandler) load(w http.ResponseWriter, r *http.Request) (*cart.Manager, bool) {
	key, ok := clientKey(w, r)
	if !ok {
		return nil, false
	}

	m := cart.NewManager(key, h.storage)
	if err := m.Load(r.Context()); err != nil {
		writeError(w, err)
		return nil, false
	}
	return m, true
}

// writeDecodeError distinguishes a rejected field (e.g. a string-formatted
// price) from generally malformed JSON.
func writeDecodeError(w http.ResponseWriter, err error) {
	if entity.IsValidation(err) {
		writeError(w, err)
		return
	}
	writeError(w, entity.NewValidationError("", "invalid request body"))
}

func (h *CartHandler) respond(w http.ResponseWriter, m *cart.Manager) {
	resp := cartResponse{
		Lines: m.Lines(),
		Total: m.Total(),
		Count: m.Count(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return
	}
}
