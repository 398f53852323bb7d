// Package events publishes order and audit changes for other systems.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kind names what happened.
type Kind string

const (
	OrderCreated         Kind = "order.created"
	OrderStatusChanged   Kind = "order.status_changed"
	OrderDeliveryChanged Kind = "order.delivery_changed"
	AuditSaved           Kind = "audit.saved"
)

// Event is the JSON payload written to the topic.
type Event struct {
	Kind        Kind      `json:"kind"`
	OrderID     string    `json:"order_id,omitempty"`
	OrderNumber int64     `json:"order_number,omitempty"`
	Status      string    `json:"status,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	Applied     int       `json:"applied,omitempty"`
	At          time.Time `json:"at"`
}

// key groups events of one entity on the same partition.
func (e Event) key() string {
	if e.OrderID != "" {
		return e.OrderID
	}
	return e.SessionID
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by entity id.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher connects a writer to the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{Key: []byte(e.key()), Value: b, Time: e.At}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
