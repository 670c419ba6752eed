package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			MinBytes:          1,
			MaxBytes:          10e6,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume fetches messages and commits each one only after the handler
// returns nil, so a crashed handler re-reads its message on restart.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// Stats reports reader counters accumulated since the previous call.
func (c *Consumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}

// DecodeRevision parses a revision event from a raw message. An empty type
// is accepted for producers that predate the field; any other type on the
// revisions topic is rejected.
func DecodeRevision(msg kafka.Message) (*RevisionEvent, error) {
	var event RevisionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("decode revision event: %w", err)
	}
	if event.Type != "" && event.Type != EventTypeRevised {
		return nil, fmt.Errorf("unexpected event type %q on revisions topic", event.Type)
	}
	if event.Itinerary == nil {
		return nil, fmt.Errorf("revision event %s carries no itinerary", event.ItineraryID)
	}
	return &event, nil
}
