package http

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/liveview"
	"github.com/maisonluxe/storefront/internal/repository"
)

// Sessions holds one identity context per client. Entries exist only
// between sign-in and sign-out; reads for unknown clients create nothing,
// so arbitrary header values cannot grow the map.
type Sessions struct {
	mu sync.Mutex
	m  map[string]*liveview.Session
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*liveview.Session)}
}

// Lookup returns the client's session, if one exists.
func (s *Sessions) Lookup(key string) (*liveview.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[key]
	return sess, ok
}

// Ensure returns the client's session, creating it on first sign-in.
func (s *Sessions) Ensure(key string) *liveview.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[key]
	if !ok {
		sess = liveview.NewSession()
		s.m[key] = sess
	}
	return sess
}

// Drop destroys the client's session.
func (s *Sessions) Drop(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Count returns the number of live sessions.
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// SessionHandler exposes sign-in and sign-out. Identity travels as an
// explicit session object; nothing else in the API reads ambient state.
type SessionHandler struct {
	customers repository.CustomerRepository
	sessions  *Sessions
}

// NewSessionHandler wires the session surface.
func NewSessionHandler(customers repository.CustomerRepository, sessions *Sessions) *SessionHandler {
	return &SessionHandler{customers: customers, sessions: sessions}
}

// Routes registers the session endpoints on the API subrouter.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Post("/", h.handleSignIn)
		r.Delete("/", h.handleSignOut)
	})
}

type signInRequest struct {
	Email string `json:"email"`
}

type sessionResponse struct {
	SignedIn bool             `json:"signed_in"`
	Customer *entity.Customer `json:"customer,omitempty"`
}

func (h *SessionHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	key, ok := clientKey(w, r)
	if !ok {
		return
	}
	sess, ok := h.sessions.Lookup(key)
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SignedIn: sess.SignedIn(),
		Customer: sess.Customer(),
	})
}

func (h *SessionHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	key, ok := clientKey(w, r)
	if !ok {
		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Email == "" {
		writeError(w, entity.NewValidationError("email", "required"))
		return
	}

	customer, err := h.customers.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := h.sessions.Ensure(key)
	sess.SignIn(*customer)
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true, Customer: customer})
}

func (h *SessionHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	key, ok := clientKey(w, r)
	if !ok {
		return
	}
	if sess, ok := h.sessions.Lookup(key); ok {
		sess.SignOut()
	}
	h.sessions.Drop(key)
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: false})
}

// clientKey extracts the client identity header shared by the cart and
// session surfaces.
func clientKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get(clientIDHeader)
	if key == "" {
		writeError(w, entity.NewValidationError("client_id", "missing "+clientIDHeader+" header"))
		return "", false
	}
	return key, true
}
