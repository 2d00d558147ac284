package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

// LogNotifier writes every event to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		Str("event_id", idString(event.ID.Bytes, event.ID.Valid)).
		Str("aggregate_id", idString(event.AggregateID.Bytes, event.AggregateID.Valid)).
		RawJSON("payload", event.Payload).
		Msg("domain event")
	return nil
}

// MessageWriter is the subset of kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes events to a Kafka topic keyed by aggregate id.
type KafkaNotifier struct {
	Writer MessageWriter
}

// NewKafkaWriter builds a writer for the given brokers and topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

// Notify implements Notifier.
func (n KafkaNotifier) Notify(ctx context.Context, event dbgen.DomainEvent) error {
	if n.Writer == nil {
		return nil
	}
	occurred := time.Now()
	if event.OccurredAt.Valid {
		occurred = event.OccurredAt.Time
	}
	msg := kafka.Message{
		Key:   []byte(idString(event.AggregateID.Bytes, event.AggregateID.Valid)),
		Value: event.Payload,
		Time:  occurred,
		Headers: []kafka.Header{
			{Key: "topic", Value: []byte(event.Topic)},
			{Key: "event_id", Value: []byte(idString(event.ID.Bytes, event.ID.Valid))},
		},
	}
	if err := n.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func idString(b [16]byte, valid bool) string {
	if !valid {
		return ""
	}
	return uuid.UUID(b).String()
}
