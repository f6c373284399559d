package main

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/keys"
	"cloudcollector/internal/logging"
	"cloudcollector/internal/service"
	"cloudcollector/internal/storage"
	"cloudcollector/models"
	"cloudcollector/pkg/graceful"
	"cloudcollector/pkg/kafkaclient"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load inventory objects announced on Kafka into Postgres",
	Long: `ingest consumes bucket notifications for inventory objects written by
"aws collect", loads each group from object storage and upserts its records
into Postgres. An offset is committed once its objects are stored. The
command stops at the first object it cannot load or store, leaving that
offset uncommitted so the next run resumes there.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, cancel := graceful.Context(cmd.Context(), logging.Logger)
	defer cancel()
	log := logging.Logger.Named("ingest")

	if len(cfg.Kafka.Brokers) == 0 {
		return errors.WithHint(errors.New("no kafka brokers configured"), "set kafka.brokers or KAFKA_BROKER")
	}
	if cfg.Postgres.DSN == "" {
		return errors.WithHint(errors.New("no postgres database configured"), "set postgres.dsn or DATABASE_URL")
	}

	objects, err := storage.NewS3Service(cfg.S3.Storage(), log)
	if err != nil {
		return err
	}
	store, err := storage.NewPostgresStore(ctx, cfg.Postgres.DSN, log)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	log.Infow("connecting to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.NotificationsTopic, "group_id", cfg.Kafka.GroupID)
	consumer := kafkaclient.NewKafkaConsumer(cfg.Kafka.NotificationsTopic, cfg.Kafka.GroupID, cfg.Kafka.Brokers, log)
	consumer.StartConsuming(ctx)
	defer consumer.Stop()

	it := service.NewIterator(consumer, ingestLoader(objects, store),
		service.WithKeyFilter(isInventoryKey),
		service.WithLogger(log),
	)

	stored := 0
	for obj := range it.Objects(ctx) {
		stored++
		pterm.Fprintln(cmd.OutOrStdout(), pterm.Sprintf("✅ %s (%d resource types)", obj.Key, len(obj.Data.Resources)))
	}
	if err := it.Err(); err != nil {
		log.Errorw("ingest stopped", "groups", stored, "error", err)
		return err
	}
	log.Infow("ingest finished", "groups", stored)
	return nil
}

type groupGetter interface {
	GetGroup(ctx context.Context, bucket, key string) (*models.Group, error)
}

type groupSaver interface {
	SaveGroup(ctx context.Context, g models.Group) error
}

// ingestLoader loads a group and stores it, so the iterator commits only
// stored groups.
func ingestLoader(objects groupGetter, store groupSaver) service.LoaderFunc[*models.Group] {
	return func(ctx context.Context, bucket, key string) (*models.Group, error) {
		g, err := objects.GetGroup(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		if ref, ok := keys.ParseGroup(key); ok && g.Profile == "" {
			g.Profile = ref.Profile
		}
		if err := store.SaveGroup(ctx, *g); err != nil {
			return nil, errors.Wrapf(err, "failed to store %s", key)
		}
		return g, nil
	}
}

func isInventoryKey(key string) bool {
	_, ok := keys.ParseGroup(key)
	return ok
}
