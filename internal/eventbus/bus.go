// Package eventbus provides the process-wide fan-out channel for domain
// events. Publishing delivers to every subscriber attached at that moment;
// there is no backlog or replay. A slow subscriber never blocks publication
// to the others: each subscription drains the shared pub/sub into its own
// unbounded queue.
package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/logging"
)

// Topic is the single in-process topic all domain events travel on.
// One topic keeps per-publisher ordering trivially intact.
const Topic = "domain.events"

const metaEventType = "event_type"

// Envelope carries a decoded domain event plus its transit id.
type Envelope struct {
	ID    string
	Event entity.Event
}

// Bus is the in-process event bus backed by a watermill GoChannel pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// New creates a Bus. Close it to release all subscriptions.
func New() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
			// Without blocking on ack, GoChannel hands each message to the
			// subscribers in its own goroutine and cross-message order is
			// lost. The subscription pump acks on receipt, so publishers
			// only ever wait for the pump, never for a slow consumer.
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NewStdLogger(false, false)),
	}
}

// Publish delivers event to every current subscriber, then returns.
func (b *Bus) Publish(ctx context.Context, event entity.Event) error {
	msg, err := Marshal(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return &entity.TransportError{Err: err}
	}
	return nil
}

// Subscribe attaches a new subscriber and returns its handle. Events begin
// from the moment of subscription; a dropped subscription can only be
// restarted by subscribing again.
func (b *Bus) Subscribe(ctx context.Context) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	msgs, err := b.pubsub.Subscribe(subCtx, Topic)
	if err != nil {
		cancel()
		return nil, &entity.TransportError{Err: err}
	}

	sub := &Subscription{
		events: make(chan Envelope),
		cancel: cancel,
	}
	go sub.pump(msgs)
	return sub, nil
}

// Close shuts the bus down and closes all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Subscription is a handle to one subscriber's lazy event sequence.
type Subscription struct {
	events chan Envelope
	cancel context.CancelFunc
	once   sync.Once
}

// Events yields events in publish order. The channel closes when the
// subscription is closed or the bus shuts down.
func (s *Subscription) Events() <-chan Envelope { return s.events }

// Close stops delivery. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// pump drains the shared pub/sub channel into an unbounded local queue so a
// slow consumer of Events never backpressures the publisher. Messages are
// acked on receipt; ordering within this subscription is preserved.
func (s *Subscription) pump(msgs <-chan *message.Message) {
	defer close(s.events)

	var queue []Envelope
	for msgs != nil || len(queue) > 0 {
		var out chan Envelope
		var next Envelope
		if len(queue) > 0 {
			out = s.events
			next = queue[0]
		}

		select {
		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			env, err := Unmarshal(msg)
			msg.Ack()
			if err != nil {
				logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping undecodable event")
				continue
			}
			queue = append(queue, env)
		case out <- next:
			queue = queue[1:]
		}
	}
}

// Marshal encodes a domain event as a watermill message with its type in
// the metadata.
func Marshal(event entity.Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}
	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set(metaEventType, event.EventType())
	return msg, nil
}

// Unmarshal decodes a watermill message back into a typed envelope.
func Unmarshal(msg *message.Message) (Envelope, error) {
	event, err := DecodeEvent(msg.Metadata.Get(metaEventType), msg.Payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{ID: msg.UUID, Event: event}, nil
}

// DecodeEvent decodes a serialized domain event by its type tag. It is
// shared with the websocket transport, which carries the same wire form.
func DecodeEvent(eventType string, payload []byte) (entity.Event, error) {
	switch eventType {
	case entity.OrderCreated{}.EventType():
		var e entity.OrderCreated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshal OrderCreated: %w", err)
		}
		return e, nil
	case entity.ProductCatalogChanged{}.EventType():
		var e entity.ProductCatalogChanged
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ProductCatalogChanged: %w", err)
		}
		return e, nil
	case entity.CustomerJoined{}.EventType():
		var e entity.CustomerJoined
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshal CustomerJoined: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}
