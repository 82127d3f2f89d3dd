package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Journal writes every dispatched event to a Kafka topic for downstream
// consumers (analytics, audit). Strictly best-effort: a journal failure
// never affects the underlying mutation or the websocket push.
type Journal struct {
	writer *kafka.Writer
}

// NewJournal creates a Kafka-backed event journal.
func NewJournal(brokers []string, topic string) *Journal {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Journal{writer: w}
}

// journalRecord is the serialized form of one dispatched event.
type journalRecord struct {
	Target  string         `json:"target"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
	At      time.Time      `json:"at"`
}

// Record appends one event to the journal, keyed by target so all events
// for a ride or user land in one partition.
func (j *Journal) Record(ctx context.Context, target, event string, payload map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	b, err := json.Marshal(journalRecord{
		Target:  target,
		Event:   event,
		Payload: payload,
		At:      time.Now(),
	})
	if err != nil {
		return err
	}

	return j.writer.WriteMessages(ctx, kafka.Message{Key: []byte(target), Value: b})
}

// Close flushes and closes the underlying writer.
func (j *Journal) Close() error {
	if j == nil || j.writer == nil {
		return nil
	}
	return j.writer.Close()
}
