package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/GTDGit/reseller_portal/internal/metrics"
)

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev *OrderEvent) error
	Close() error
}

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order id so every event of one order
// lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a synchronous publisher for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev *OrderEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Event)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.PublishErrors.Inc()
		return fmt.Errorf("failed to write message: %w", err)
	}
	metrics.EventsPublished.Inc()
	return nil
}

// Topic returns the destination topic.
func (p *KafkaPublisher) Topic() string {
	return p.topic
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *OrderEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// New returns a KafkaPublisher, or a NopPublisher when brokers is empty.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
