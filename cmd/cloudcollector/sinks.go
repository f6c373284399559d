package main

import (
	"context"

	"go.uber.org/zap"

	"cloudcollector/internal/config"
	"cloudcollector/internal/errors"
	"cloudcollector/internal/output"
	"cloudcollector/internal/storage"
	"cloudcollector/pkg/kafkaclient"
)

// buildWriters returns the file writer plus every configured sink. The
// returned close func releases sink connections and is never nil.
func buildWriters(ctx context.Context, c *config.Config, log *zap.SugaredLogger) (output.Multi, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	writers := []output.Writer{&output.FileWriter{
		Dir:           c.Output.Dir,
		CreateNewFile: c.CreateNewFile,
		Logger:        log,
	}}

	if c.S3.Enabled() {
		svc, err := storage.NewS3Service(c.S3.Storage(), log)
		if err != nil {
			closeAll()
			return output.Multi{}, func() {}, errors.WithHint(err, "set s3.endpoint, s3.access_key, s3.secret_key and s3.bucket")
		}
		writers = append(writers, &storage.S3Writer{Service: svc, Bucket: c.S3.Bucket, Region: c.S3.Region})
	}

	if c.Kafka.Enabled() {
		producer := kafkaclient.NewKafkaProducer(c.Kafka.Topic, c.Kafka.Brokers, log)
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				log.Warnw("failed to close kafka producer", "error", err)
			}
		})
		writers = append(writers, &output.KafkaWriter{Publisher: producer, BatchSize: c.Kafka.BatchSize})
	}

	if c.Postgres.DSN != "" {
		store, err := storage.NewPostgresStore(ctx, c.Postgres.DSN, log)
		if err != nil {
			closeAll()
			return output.Multi{}, func() {}, err
		}
		closers = append(closers, store.Close)
		writers = append(writers, &storage.PostgresWriter{Store: store})
	}

	if c.SQLite.Path != "" {
		store, err := storage.OpenSQLite(c.SQLite.Path)
		if err != nil {
			closeAll()
			return output.Multi{}, func() {}, err
		}
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				log.Warnw("failed to close sqlite", "error", err)
			}
		})
		writers = append(writers, &storage.SQLiteWriter{Store: store})
	}

	return output.Multi{Writers: writers, Logger: log}, closeAll, nil
}
