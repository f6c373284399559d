package storage

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
	"cloudcollector/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS inventory_records (
	run_id        TEXT        NOT NULL,
	profile       TEXT        NOT NULL,
	service       TEXT        NOT NULL,
	region        TEXT        NOT NULL,
	resource_type TEXT        NOT NULL,
	payload       JSONB       NOT NULL,
	collected_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, service, region, resource_type)
)`

const upsertRecord = `
INSERT INTO inventory_records (run_id, profile, service, region, resource_type, payload, collected_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (run_id, service, region, resource_type)
DO UPDATE SET profile = EXCLUDED.profile, payload = EXCLUDED.payload, collected_at = EXCLUDED.collected_at`

// execer is satisfied by *pgxpool.Pool, pgx.Conn and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore upserts records into the inventory_records table.
type PostgresStore struct {
	db    execer
	close func()
	log   *zap.SugaredLogger
}

// NewPostgresStore opens a pool for dsn and checks connectivity.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WithHint(errors.Wrap(err, "failed to reach postgres"), "check postgres.dsn")
	}
	return &PostgresStore{db: pool, close: pool.Close, log: logging.Or(logger)}, nil
}

// EnsureSchema creates the records table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return errors.Wrap(err, "failed to create inventory_records")
	}
	return nil
}

// SaveRecords upserts records under runID. It stops at the first failure.
func (s *PostgresStore) SaveRecords(ctx context.Context, runID, profile string, records []models.ResourceCollection) error {
	for _, r := range records {
		payload, err := json.Marshal(r.Resources)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize %s/%s/%s", r.Service, r.Region, r.ResourceType)
		}
		if _, err := s.db.Exec(ctx, upsertRecord,
			runID, profile, r.Service, r.Region, r.ResourceType, payload, r.CollectedAt,
		); err != nil {
			return errors.Wrapf(err, "failed to upsert %s/%s/%s", r.Service, r.Region, r.ResourceType)
		}
	}
	s.log.Debugw("stored records", "run_id", runID, "records", len(records))
	return nil
}

// SaveGroup upserts the records of one stored group.
func (s *PostgresStore) SaveGroup(ctx context.Context, g models.Group) error {
	return s.SaveRecords(ctx, g.RunID, g.Profile, g.Records())
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.close != nil {
		s.close()
	}
}

// PostgresWriter is the output sink backed by a PostgresStore.
type PostgresWriter struct {
	Store *PostgresStore
}

func (w *PostgresWriter) Name() string { return "postgres" }

func (w *PostgresWriter) Write(ctx context.Context, records []models.ResourceCollection, meta models.Metadata) error {
	if err := w.Store.EnsureSchema(ctx); err != nil {
		return err
	}
	return w.Store.SaveRecords(ctx, meta.RunID.String(), meta.Profile, records)
}
