// Package output persists collected records.
package output

import (
	"context"

	"go.uber.org/zap"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
	"cloudcollector/models"
)

// Writer persists one run's records.
type Writer interface {
	Name() string
	Write(ctx context.Context, records []models.ResourceCollection, meta models.Metadata) error
}

// Multi writes to every writer, even when some fail, and joins the
// failures.
type Multi struct {
	Writers []Writer
	Logger  *zap.SugaredLogger
}

func (m Multi) Name() string { return "multi" }

func (m Multi) Write(ctx context.Context, records []models.ResourceCollection, meta models.Metadata) error {
	log := logging.Or(m.Logger)
	var errs []error
	for _, w := range m.Writers {
		if err := w.Write(ctx, records, meta); err != nil {
			log.Errorw("writer failed", "writer", w.Name(), "error", err)
			errs = append(errs, errors.Wrapf(err, "%s writer", w.Name()))
			continue
		}
		log.Infow("records written", "writer", w.Name(), "records", len(records))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
