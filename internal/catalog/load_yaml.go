package catalog

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"cloudcollector/internal/errors"
)

// ParseYAML decodes a YAML catalog file. Unknown keys are rejected.
func ParseYAML(filename string, src []byte) ([]Service, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var parsed fileCatalog
	if err := dec.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Mark(errors.Wrapf(err, "failed to decode YAML catalog %s", filename), ErrInvalidConfig)
	}

	services, err := parsed.build()
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", filename)
	}
	return services, nil
}
