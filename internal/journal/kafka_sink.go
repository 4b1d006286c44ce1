package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"corridor_dispatch/internal/models"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig configures the Kafka sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string

	// MaxAttempts defaults to 3 when <= 0.
	MaxAttempts int

	// WriteTimeout is the per-attempt timeout. Defaults to 5s.
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each record as JSON, keyed by train number so a
// train's history stays on one partition.
type KafkaSink struct {
	writer       messageWriter
	maxAttempts  int
	writeTimeout time.Duration
	backoff      time.Duration
}

func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
	})
	return newKafkaSink(w, cfg), nil
}

func newKafkaSink(w messageWriter, cfg KafkaConfig) *KafkaSink {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &KafkaSink{
		writer:       w,
		maxAttempts:  cfg.MaxAttempts,
		writeTimeout: cfg.WriteTimeout,
		backoff:      100 * time.Millisecond,
	}
}

func (k *KafkaSink) Write(ctx context.Context, rec models.Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(recordKey(rec)),
		Value: value,
		Time:  rec.At.UTC(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(rec.Kind)},
		},
	}

	var lastErr error
	backoff := k.backoff
	for attempt := 1; attempt <= k.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, k.writeTimeout)
		lastErr = k.writer.WriteMessages(attemptCtx, msg)
		cancel()
		if lastErr == nil {
			return nil
		}
		if attempt == k.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("kafka write %s: %w", rec.ID, ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("kafka write %s failed after %d attempts: %w", rec.ID, k.maxAttempts, lastErr)
}

func (k *KafkaSink) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
