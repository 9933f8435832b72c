// Package kafka publishes interaction records to a Kafka topic so external
// observers (UI, analytics) can consume them.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/requestcontext"
)

// Header names attached to every record.
const (
	HeaderEventID   = "event_id"
	HeaderRequestID = "request_id"
	HeaderEventType = "event_type"
)

// EventTypeInteraction labels interaction records on the wire.
const EventTypeInteraction = "interaction"

// producer is the slice of *kgo.Client the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes one record per interaction, keyed by identity so an
// identity's records stay ordered within a partition.
type Publisher struct {
	client producer
	topic  string
}

func NewPublisher(client *kgo.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// payload is the JSON body of an interaction record.
type payload struct {
	EventID   string `json:"event_id"`
	Identity  string `json:"identity"`
	Timestamp int64  `json:"timestamp"`
	Time      string `json:"time"`
}

func (p *Publisher) Publish(ctx context.Context, record models.InteractionRecord) error {
	eventID := uuid.New()
	body, err := json.Marshal(payload{
		EventID:   eventID.String(),
		Identity:  record.Identity.String(),
		Timestamp: int64(record.Timestamp),
		Time:      record.Timestamp.Time().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal interaction record: %w", err)
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(record.Identity.String()),
		Value:     body,
		Timestamp: record.Timestamp.Time(),
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventID, Value: []byte(eventID.String())},
			{Key: HeaderEventType, Value: []byte(EventTypeInteraction)},
		},
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: HeaderRequestID, Value: []byte(requestID)})
	}

	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce interaction record: %w", err)
	}
	return nil
}
