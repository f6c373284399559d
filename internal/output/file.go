package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
	"cloudcollector/models"
)

// FileWriter writes one pretty-printed JSON file per (service, region) under
// Dir/<profile>/.
type FileWriter struct {
	Dir string
	// CreateNewFile adds a timestamp to file names instead of overwriting
	// the previous run's files.
	CreateNewFile bool
	Now           func() time.Time
	Logger        *zap.SugaredLogger
}

func (w *FileWriter) Name() string { return "file" }

// FileName returns the file name used for a group.
func (w *FileWriter) FileName(g models.Group) string {
	if w.CreateNewFile {
		return fmt.Sprintf("%s_%s_all_%s.json", g.Service, g.Region, w.now().UTC().Format("20060102_150405"))
	}
	return fmt.Sprintf("%s_%s_all.json", g.Service, g.Region)
}

func (w *FileWriter) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *FileWriter) Write(ctx context.Context, records []models.ResourceCollection, meta models.Metadata) error {
	log := logging.Or(w.Logger)
	dir := filepath.Join(w.Dir, meta.Profile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create profile directory %s", dir)
	}

	for _, g := range models.GroupRecords(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "failed to serialize %s/%s", g.Service, g.Region)
		}
		path := filepath.Join(dir, w.FileName(g))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write file %s", path)
		}
		log.Infow("wrote inventory file", "path", path, "resource_types", len(g.Resources))
	}
	return nil
}
