// Package env loads .env files into the process environment.
package env

import (
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
)

// Load reads the given .env files, or ./.env when none are named. Variables
// already set in the environment win. A missing default file is not an
// error; a missing named file is.
func Load(logger *zap.SugaredLogger, files ...string) error {
	log := logging.Or(logger)
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debugw("no .env file found, using the process environment")
				return nil
			}
			return errors.Wrap(err, "failed to read .env")
		}
		log.Debugw("loaded .env")
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Wrapf(err, "failed to read %v", files)
	}
	log.Debugw("loaded env files", "files", files)
	return nil
}

// Require returns the value of key, or an error naming it when unset.
func Require(key string) (string, error) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return "", errors.WithHintf(errors.Newf("environment variable %s not set", key),
			"export %s or add it to .env", key)
	}
	return val, nil
}
