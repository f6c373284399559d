package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cloudcollector/internal/errors"
	"cloudcollector/models"
)

//go:embed schema.sql
var sqliteSchema string

// SQLiteStore keeps runs and their records in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &SQLiteStore{db: db}, nil
}

// SaveRun stores meta and records in one transaction. Saving the same run
// again replaces its records.
func (s *SQLiteStore) SaveRun(ctx context.Context, meta models.Metadata, records []models.ResourceCollection) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	runID := meta.RunID.String()
	if _, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, profile, generated_at, regions, services) VALUES (?, ?, ?, ?, ?)`,
		runID, meta.Profile, meta.GeneratedAt.UTC().Format(time.RFC3339),
		strings.Join(meta.Regions, ","), strings.Join(meta.Services, ","),
	); err != nil {
		return errors.Wrap(err, "failed to insert run")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE run_id = ?`, runID); err != nil {
		return errors.Wrap(err, "failed to clear previous records")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (run_id, service, region, resource_type, payload, collected_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		payload, mErr := json.Marshal(r.Resources)
		if mErr != nil {
			err = errors.Wrapf(mErr, "failed to serialize %s/%s/%s", r.Service, r.Region, r.ResourceType)
			return err
		}
		if _, err = stmt.ExecContext(ctx, runID, r.Service, r.Region, r.ResourceType,
			string(payload), r.CollectedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return errors.Wrapf(err, "failed to insert %s/%s/%s", r.Service, r.Region, r.ResourceType)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit run")
	}
	return nil
}

// Records returns the records of runID ordered by service, region and type.
func (s *SQLiteStore) Records(ctx context.Context, runID string) ([]models.ResourceCollection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT service, region, resource_type, payload, collected_at FROM records
		 WHERE run_id = ? ORDER BY service, region, resource_type`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query records")
	}
	defer rows.Close()

	var out []models.ResourceCollection
	for rows.Next() {
		var (
			r         models.ResourceCollection
			payload   string
			collected string
		)
		if err := rows.Scan(&r.Service, &r.Region, &r.ResourceType, &payload, &collected); err != nil {
			return nil, errors.Wrap(err, "failed to scan record")
		}
		dec := json.NewDecoder(strings.NewReader(payload))
		dec.UseNumber()
		if err := dec.Decode(&r.Resources); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s/%s/%s", r.Service, r.Region, r.ResourceType)
		}
		if r.CollectedAt, err = time.Parse(time.RFC3339Nano, collected); err != nil {
			return nil, errors.Wrap(err, "failed to parse collected_at")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SQLiteWriter is the output sink backed by a SQLiteStore.
type SQLiteWriter struct {
	Store *SQLiteStore
}

func (w *SQLiteWriter) Name() string { return "sqlite" }

func (w *SQLiteWriter) Write(ctx context.Context, records []models.ResourceCollection, meta models.Metadata) error {
	return w.Store.SaveRun(ctx, meta, records)
}
