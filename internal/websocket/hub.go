// Package websocket pushes domain events to browser and console clients.
// The hub fans every published event out to all connected sockets; a client
// that cannot keep up is dropped rather than allowed to stall the rest.
package websocket

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/eventbus"
	"github.com/maisonluxe/storefront/internal/logging"
)

// Control frame types exchanged with clients. Domain events travel with
// their event type string instead.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is one websocket frame: an event type tag plus its serialized
// payload. The payload encoding matches the event bus wire form, so
// consumers decode both with the same code.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
		clients:    make(map[*Client]struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is canceled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			logging.Info().Int("clients", n).Msg("websocket client connected")
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.shutdown()
			}
			n := len(h.clients)
			h.mu.Unlock()
			logging.Info().Int("clients", n).Msg("websocket client disconnected")
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// BroadcastEvent serializes a domain event and queues it for all clients.
// When the broadcast queue is full the frame is dropped; clients recover
// through their next snapshot reconciliation.
func (h *Hub) BroadcastEvent(event entity.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Str("type", event.EventType()).Msg("marshal event for broadcast")
		return
	}

	select {
	case h.broadcast <- Message{Type: event.EventType(), Data: payload}:
	default:
		logging.Warn().Str("type", event.EventType()).Msg("broadcast queue full, dropping frame")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !c.enqueue(msg) {
			// Send buffer full: the client is too slow to keep.
			delete(h.clients, c)
			c.shutdown()
			logging.Warn().Msg("dropping slow websocket client")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		c.shutdown()
	}
	logging.Info().Msg("websocket hub stopped")
}

// Bridge subscribes to the event bus and rebroadcasts every event to the
// hub's clients, until ctx is canceled or the bus closes.
func Bridge(ctx context.Context, bus *eventbus.Bus, hub *Hub) error {
	sub, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-sub.Events():
			if !ok {
				return nil
			}
			hub.BroadcastEvent(env.Event)
		}
	}
}
