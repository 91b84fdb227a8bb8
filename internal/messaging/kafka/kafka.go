// Package kafka publishes domain events to a Kafka topic so other
// processes (fulfilment, email, warehousing) can consume them. It is
// optional; the in-process bus remains the source for this process's own
// subscribers.
package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wmkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"

	"github.com/maisonluxe/storefront/internal/entity"
	"github.com/maisonluxe/storefront/internal/eventbus"
)

// Publisher writes domain events to a single Kafka topic.
type Publisher struct {
	publisher *wmkafka.Publisher
	topic     string
}

// NewPublisher connects to the given brokers. Acks from all in-sync
// replicas are required before Publish returns.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	saramaCfg := wmkafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5

	pub, err := wmkafka.NewPublisher(wmkafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             wmkafka.DefaultMarshaler{},
		OverwriteSaramaConfig: saramaCfg,
	}, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}

	return &Publisher{publisher: pub, topic: topic}, nil
}

// Publish implements messaging.Publisher.
func (p *Publisher) Publish(ctx context.Context, event entity.Event) error {
	msg, err := eventbus.Marshal(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return &entity.TransportError{Err: err}
	}
	return nil
}

// Close releases the underlying producer.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}
