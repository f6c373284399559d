package kafkaclient

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaWriter defines the subset of *kafka.Writer the producer uses.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes messages to one topic. Messages with the same key
// land on the same partition.
type KafkaProducer struct {
	writer KafkaWriter
	log    *zap.SugaredLogger
}

// NewKafkaProducer creates a producer for topic.
func NewKafkaProducer(topic string, brokers []string, logger *zap.SugaredLogger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newProducer(w, logger)
}

func newProducer(w KafkaWriter, logger *zap.SugaredLogger) *KafkaProducer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &KafkaProducer{writer: w, log: logger}
}

// Publish writes msgs synchronously.
func (p *KafkaProducer) Publish(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	p.log.Debugw("published messages", "count", len(msgs))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
