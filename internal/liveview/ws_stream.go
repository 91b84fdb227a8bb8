package liveview

import (
	"context"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/eventbus"
	"github.com/maisonluxe/storefront/internal/logging"
	ws "github.com/maisonluxe/storefront/internal/websocket"
)

// WSStream is an EventStream over the server's websocket endpoint, for
// console processes running outside the server.
type WSStream struct {
	url    string
	dialer *gws.Dialer
}

// NewWSStream creates a stream dialing url (a ws:// or wss:// endpoint).
func NewWSStream(url string) *WSStream {
	return &WSStream{
		url: url,
		dialer: &gws.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Connect implements EventStream. The returned channel closes when the
// socket drops or ctx is canceled.
func (s *WSStream) Connect(ctx context.Context) (<-chan eventbus.Envelope, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, &entity.TransportError{Err: err}
	}

	events := make(chan eventbus.Envelope)
	go s.readLoop(ctx, conn, events)
	return events, nil
}

// readLoop decodes frames until the socket errors. Undecodable frames are
// dropped; the connection survives them.
func (s *WSStream) readLoop(ctx context.Context, conn *gws.Conn, events chan<- eventbus.Envelope) {
	defer close(events)
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				logging.Warn().Err(err).Msg("websocket stream closed")
			}
			return
		}

		event, err := eventbus.DecodeEvent(msg.Type, msg.Data)
		if err != nil {
			logging.Warn().Err(err).Str("type", msg.Type).Msg("dropping undecodable frame")
			continue
		}

		select {
		case events <- eventbus.Envelope{Event: event}:
		case <-ctx.Done():
			return
		}
	}
}
