// Package http exposes the storefront REST API and the websocket event
// endpoint.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	gws "github.com/gorilla/websocket"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/logging"
	"github.com/maisonluxe/storefront/internal/service"
	ws "github.com/maisonluxe/storefront/internal/websocket"
)

// Handler handles HTTP requests for the storefront.
type Handler struct {
	orders   *service.OrderService
	store    *service.StoreService
	hub      *ws.Hub
	upgrader gws.Upgrader
}

// NewHandler wires the API surface.
func NewHandler(orders *service.OrderService, store *service.StoreService, hub *ws.Hub) *Handler {
	return &Handler{
		orders: orders,
		store:  store,
		hub:    hub,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Routes registers the storefront endpoints on the API subrouter. The
// websocket endpoint is mounted separately so it can skip the request
// timeout middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/products", h.handleListProducts)
	r.Get("/products/{id}", h.handleGetProduct)
	r.Put("/products/{id}", h.handleSaveProduct)
	r.Delete("/products/{id}", h.handleDeleteProduct)

	r.Post("/orders", h.handleCreateOrder)
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/recent", h.handleRecentOrders)
	r.Put("/orders/{id}/pay", h.handleMarkPaid)
	r.Put("/orders/{id}/deliver", h.handleMarkDelivered)

	r.Post("/customers", h.handleRegisterCustomer)

	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handleUpdateSettings)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.Products(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := entity.ProductID(chi.URLParam(r, "id"))
	product, err := h.store.Product(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	var product entity.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, entity.NewValidationError("", "invalid request body"))
		return
	}
	product.ID = entity.ProductID(chi.URLParam(r, "id"))

	if err := h.store.SaveProduct(r.Context(), product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := entity.ProductID(chi.URLParam(r, "id"))
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var input service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, entity.NewValidationError("", "invalid request body"))
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Orders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleRecentOrders(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, entity.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	orders, err := h.orders.RecentOrders(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.MarkPaid(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

func (h *Handler) handleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.MarkDelivered(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered"})
}

type registerCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) handleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req registerCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entity.NewValidationError("", "invalid request body"))
		return
	}

	customer, err := h.store.RegisterCustomer(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings entity.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, entity.NewValidationError("", "invalid request body"))
		return
	}

	if err := h.store.UpdateSettings(r.Context(), settings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// HandleWebsocket upgrades the connection and attaches it to the hub.
func (h *Handler) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	ws.NewClient(h.hub, conn).Start()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Validation
// failures carry their field back to the caller; everything else is an
// opaque 5xx.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case entity.IsValidation(err):
		var ve *entity.ValidationError
		errors.As(err, &ve)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": ve.Reason,
			"field": ve.Field,
		})
	case errors.Is(err, entity.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		logging.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
