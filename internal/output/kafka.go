package output

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/keys"
	"cloudcollector/models"
)

// Publisher sends messages. *kafkaclient.KafkaProducer implements it.
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaWriter publishes one message per record, keyed by
// service/region/resource_type.
type KafkaWriter struct {
	Publisher Publisher
	// BatchSize caps messages per publish call. Zero sends everything at once.
	BatchSize int
}

func (w *KafkaWriter) Name() string { return "kafka" }

func (w *KafkaWriter) Write(ctx context.Context, records []models.ResourceCollection, meta models.Metadata) error {
	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		value, err := json.Marshal(r)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize %s", keys.Record(r))
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(keys.Record(r)),
			Value: value,
			Headers: []kafka.Header{
				{Key: "run_id", Value: []byte(meta.RunID.String())},
				{Key: "profile", Value: []byte(meta.Profile)},
			},
		})
	}

	size := w.BatchSize
	if size <= 0 {
		size = len(msgs)
	}
	for start := 0; start < len(msgs); start += size {
		end := min(start+size, len(msgs))
		if err := w.Publisher.Publish(ctx, msgs[start:end]...); err != nil {
			return errors.Wrap(err, "failed to publish records")
		}
	}
	return nil
}
