package service

import (
	"context"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

type kafkaMessage = kafka.Message

// MessageIterator defines the contract for consuming messages from a Kafka
// topic. *kafkaclient.KafkaConsumer implements it.
//
// Implementations are responsible for the lifecycle of the consumer
// connection.
type MessageIterator interface {
	// Messages returns a receive-only channel that is closed when the
	// consumer stops.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges that a message has been processed.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc loads and decodes the object at bucket/key. Implementations
// must be read-only and honor ctx.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// KeyFilter reports whether an object key should be loaded.
type KeyFilter func(key string) bool

// FetchedObject pairs a decoded object with the event that referenced it.
type FetchedObject[T any] struct {
	Data T
	// Key is the unescaped object key.
	Key   string
	Event notification.Event
}
