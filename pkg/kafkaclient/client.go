// Package kafkaclient wraps segmentio/kafka-go readers and writers behind
// small interfaces so consumers and producers can be tested without a
// broker.
package kafkaclient

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests. FetchMessage never commits;
// offsets move only through CommitMessages.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer fetches messages in a background loop and hands them out on
// a channel. Nothing is committed until CommitOffset is called.
type KafkaConsumer struct {
	reader KafkaReader
	log    *zap.SugaredLogger
	// closed to stop the read loop
	doneChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	messageChan chan kafka.Message
	// backoff after a read error
	backoff time.Duration
}

// NewKafkaConsumer creates a consumer for topic in consumer group groupID.
func NewKafkaConsumer(topic, groupID string, brokers []string, logger *zap.SugaredLogger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		// Offsets are committed by the caller after processing.
		CommitInterval: 0,
		MinBytes:       10e3,
		MaxBytes:       10e6,
	})
	return newConsumer(reader, logger)
}

func newConsumer(reader KafkaReader, logger *zap.SugaredLogger) *KafkaConsumer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &KafkaConsumer{
		reader:      reader,
		log:         logger,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
		backoff:     time.Second,
	}
}

// Messages returns the channel of received messages. It is closed when the
// loop stops.
func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

// CommitOffset commits msg's offset.
func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	kc.log.Debugw("committing offset", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the read loop in a separate goroutine.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		kc.log.Infow("starting kafka consumer loop")
		for {
			select {
			case <-ctx.Done():
				kc.log.Infow("context canceled, stopping consumer loop")
				return
			case <-kc.doneChan:
				kc.log.Infow("shutdown signal received, stopping consumer loop")
				return
			default:
			}

			msg, err := kc.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return
				}
				kc.log.Warnw("error reading message", "error", err)
				select {
				case <-time.After(kc.backoff):
				case <-ctx.Done():
					return
				case <-kc.doneChan:
					return
				}
				continue
			}

			select {
			case kc.messageChan <- msg:
				kc.log.Debugw("message received", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			case <-ctx.Done():
				return
			case <-kc.doneChan:
				return
			}
		}
	}()
}

// Stop shuts the loop down, waits for it and closes the reader. It is safe to
// call more than once.
func (kc *KafkaConsumer) Stop() {
	kc.stopOnce.Do(func() {
		close(kc.doneChan)
		kc.wg.Wait()
		if err := kc.reader.Close(); err != nil {
			kc.log.Warnw("failed to close kafka reader", "error", err)
		}
		kc.log.Infow("kafka consumer stopped")
	})
}
