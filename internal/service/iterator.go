// Package service turns storage notifications into loaded objects.
// An Iterator consumes MinIO bucket events from a message source (Kafka via
// pkg/kafkaclient), loads the referenced object with a LoaderFunc and emits
// it for processing.
package service

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/minio/minio-go/v7/pkg/notification"
	"go.uber.org/zap"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
)

// Iterator consumes messages from a MessageIterator, interprets each message
// as a MinIO notification, loads every referenced object via LoaderFunc and
// yields FetchedObject items on a channel.
//
// The Iterator does not manage the lifecycle of the underlying message
// source.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
	accept      KeyFilter
	log         *zap.SugaredLogger

	mu  sync.Mutex
	err error
}

// Option configures an Iterator.
type Option func(*options)

type options struct {
	accept KeyFilter
	log    *zap.SugaredLogger
}

// WithKeyFilter skips objects whose key is rejected by accept.
func WithKeyFilter(accept KeyFilter) Option {
	return func(o *options) { o.accept = accept }
}

// WithLogger sets the iterator's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.log = l }
}

// NewIterator constructs an Iterator for the provided message source and
// object loader.
func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T], opts ...Option) *Iterator[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
		accept:      o.accept,
		log:         logging.Or(o.log),
	}
}

// Objects streams loaded objects until the message channel closes, ctx is
// done or a load fails.
//
// A message is committed once all of its accepted objects were loaded and
// handed to the consumer. Messages that cannot be decoded, or that only
// reference filtered keys, are committed and skipped. Kafka offsets are
// positional, so a load failure stops the iterator without committing: the
// failed message and everything after it are redelivered to the next
// consumer of the group. Err reports the failure once the channel is closed.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for {
			var (
				msg kafkaMessage
				ok  bool
			)
			select {
			case <-ctx.Done():
				return
			case msg, ok = <-it.msgIterator.Messages():
				if !ok {
					return
				}
			}

			var info notification.Info
			if err := json.Unmarshal(msg.Value, &info); err != nil {
				it.log.Warnw("skipping undecodable notification", "offset", msg.Offset, "error", err)
				it.commit(ctx, msg)
				continue
			}

			for _, event := range info.Records {
				key, err := url.QueryUnescape(event.S3.Object.Key)
				if err != nil {
					it.log.Warnw("skipping object with malformed key", "key", event.S3.Object.Key, "error", err)
					continue
				}
				if it.accept != nil && !it.accept(key) {
					it.log.Debugw("ignoring object", "key", key)
					continue
				}
				data, err := it.loader(ctx, event.S3.Bucket.Name, key)
				if err != nil {
					it.log.Errorw("failed to load object, stopping before commit", "bucket", event.S3.Bucket.Name, "key", key, "offset", msg.Offset, "error", err)
					it.fail(errors.Wrapf(err, "load %s at offset %d", key, msg.Offset))
					return
				}
				select {
				case out <- &FetchedObject[T]{Data: data, Key: key, Event: event}:
				case <-ctx.Done():
					return
				}
			}

			it.commit(ctx, msg)
		}
	}()
	return out
}

// Err returns the load failure that stopped the iterator, if any. It is
// meaningful once the Objects channel is closed.
func (it *Iterator[T]) Err() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.err
}

func (it *Iterator[T]) fail(err error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.err = err
}

func (it *Iterator[T]) commit(ctx context.Context, msg kafkaMessage) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		it.log.Warnw("failed to commit offset", "offset", msg.Offset, "error", err)
	}
}
