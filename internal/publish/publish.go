package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/types"
)

// Event is the message value published for each persisted recommendation.
type Event struct {
	CycleID        string               `json:"cycle_id"`
	PublishedAt    string               `json:"published_at"`
	Recommendation types.Recommendation `json:"recommendation"`
}

type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per recommendation, keyed by symbol so
// that a symbol's history stays on one partition.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	metrics *metrics.Recorder
	now     func() time.Time
}

var _ interfaces.Publisher = (*KafkaPublisher)(nil)

// NewKafka creates a synchronous publisher.
func NewKafka(cfg Config, m *metrics.Recorder) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("topic is required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Gzip,
		MaxAttempts:            3,
		WriteTimeout:           cfg.WriteTimeout,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafka(w, cfg.Topic, m), nil
}

func newKafka(w messageWriter, topic string, m *metrics.Recorder) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, metrics: m, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, cycleID string, rec types.Recommendation) error {
	value, err := json.Marshal(Event{
		CycleID:        cycleID,
		PublishedAt:    p.now().UTC().Format(time.RFC3339),
		Recommendation: rec,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.Symbol),
		Value: value,
		Headers: []kafka.Header{
			{Key: "cycle_id", Value: []byte(cycleID)},
			{Key: "action", Value: []byte(rec.Action)},
		},
	})
	p.metrics.RecordPublish(err == nil)
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", rec.Symbol, p.topic, err)
	}
	return nil
}

// Close closes the producer.
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// Noop discards everything. It is used when publishing is disabled.
type Noop struct{}

var _ interfaces.Publisher = Noop{}

func (Noop) Publish(context.Context, string, types.Recommendation) error { return nil }
func (Noop) Close() error                                                { return nil }
