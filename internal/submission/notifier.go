package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventSubmitted is the type of the event published for every stored request.
const EventSubmitted = "request.submitted"

// Event announces a stored request.
type Event struct {
	Type               string    `json:"type"`
	RequestID          string    `json:"requestId"`
	Service            string    `json:"service"`
	Language           string    `json:"language"`
	Email              string    `json:"email"`
	LoanAmount         string    `json:"loanAmount"`
	LoanDurationMonths int       `json:"loanDurationMonths"`
	Documents          int       `json:"documents"`
	SubmittedAt        time.Time `json:"submittedAt"`
}

// Notifier publishes request events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
	Close() error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) error { return nil }

func (NopNotifier) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes events to a Kafka topic keyed by request id.
type KafkaNotifier struct {
	writer messageWriter
}

// NewKafkaNotifier creates a notifier writing to topic on brokers.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}}
}

// Notify writes one message and waits for the acknowledgement.
func (k *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.RequestID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
