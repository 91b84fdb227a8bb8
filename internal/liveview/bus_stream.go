package liveview

import (
	"context"

	"github.com/maisonluxe/storefront/internal/eventbus"
)

// BusStream adapts the in-process event bus to the EventStream interface,
// for running the console views inside the server process.
type BusStream struct {
	bus *eventbus.Bus
}

// NewBusStream wraps bus.
func NewBusStream(bus *eventbus.Bus) *BusStream {
	return &BusStream{bus: bus}
}

// Connect implements EventStream. The channel closes when ctx is canceled
// or the bus shuts down.
func (s *BusStream) Connect(ctx context.Context) (<-chan eventbus.Envelope, error) {
	sub, err := s.bus.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	return sub.Events(), nil
}
