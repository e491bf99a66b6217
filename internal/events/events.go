// Package events publishes order lifecycle events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"raydrip/internal/money"
)

const TypeOrderCommitted = "order.committed"

// OrderCommitted is emitted once an order is in the ledger.
type OrderCommitted struct {
	OrderID   string       `json:"order_id"`
	PaymentID string       `json:"payment_id"`
	ClientID  string       `json:"client_id"`
	UserID    string       `json:"user_id"`
	Guest     bool         `json:"guest"`
	Items     int          `json:"items"`
	Total     money.Amount `json:"total_amount"`
	Currency  string       `json:"currency"`
	PlacedAt  time.Time    `json:"placed_at"`
}

type Publisher interface {
	PublishOrderCommitted(ctx context.Context, event OrderCommitted) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderCommitted(ctx context.Context, event OrderCommitted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(TypeOrderCommitted)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher is used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) PublishOrderCommitted(_ context.Context, event OrderCommitted) error {
	log.Printf("[EVENTS] [INFO] %s order=%s total=%d %s", TypeOrderCommitted, event.OrderID, event.Total, event.Currency)
	return nil
}

func (LogPublisher) Close() error { return nil }

// New picks Kafka when brokers are configured.
func New(topic string, brokers []string) Publisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}
	return NewKafkaPublisher(topic, brokers...)
}
