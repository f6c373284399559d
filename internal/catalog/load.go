package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cloudcollector/internal/errors"
)

// Catalog files describe extra services in HCL or YAML. Both formats decode
// into the same structs:
//
//	service "kinesis" {
//	  category = "integration"
//	  policy   = "regional"
//
//	  list_then_enrich "streams" {
//	    command        = "kinesis list-streams --query '{Streams: StreamNames[].{StreamName: @}}'"
//	    array_key      = "Streams"
//	    identifier_key = "StreamName"
//	    concurrency    = 5
//
//	    detail "Summary" {
//	      args = ["kinesis", "describe-stream-summary", "--stream-name", id]
//	    }
//	  }
//	}
//
// In YAML the label becomes a name/type/field key. The identifier
// placeholder is written literally as {id}; HCL also exposes it as the
// variable id.

type fileCatalog struct {
	Services []fileService `hcl:"service,block" yaml:"services"`
}

type fileService struct {
	Name           string               `hcl:"name,label" yaml:"name"`
	Category       string               `hcl:"category,optional" yaml:"category"`
	Policy         string               `hcl:"policy,optional" yaml:"policy"`
	Aliases        []string             `hcl:"aliases,optional" yaml:"aliases"`
	PlainLists     []filePlainList      `hcl:"plain_list,block" yaml:"plain_list"`
	Batches        []fileBatch          `hcl:"batch,block" yaml:"batch"`
	ListThenEnrich []fileListThenEnrich `hcl:"list_then_enrich,block" yaml:"list_then_enrich"`
}

type fileCommand struct {
	Command string
	Args    []string
}

func (c fileCommand) operation() (Operation, error) {
	switch {
	case c.Command != "" && len(c.Args) > 0:
		return Operation{}, errors.New("set either command or args, not both")
	case len(c.Args) > 0:
		return NewOperation(c.Args...), nil
	case c.Command != "":
		return ParseOperation(c.Command)
	}
	return Operation{}, errors.New("missing command")
}

type filePlainList struct {
	Type       string   `hcl:"type,label" yaml:"type"`
	Command    string   `hcl:"command,optional" yaml:"command"`
	Args       []string `hcl:"args,optional" yaml:"args"`
	Partitions []string `hcl:"partitions,optional" yaml:"partitions"`
}

type fileBatch struct {
	Group      string        `hcl:"group,label" yaml:"group"`
	Operations []fileNamedOp `hcl:"operation,block" yaml:"operations"`
	Partitions []string      `hcl:"partitions,optional" yaml:"partitions"`
}

type fileNamedOp struct {
	Type    string   `hcl:"type,label" yaml:"type"`
	Command string   `hcl:"command,optional" yaml:"command"`
	Args    []string `hcl:"args,optional" yaml:"args"`
}

type fileListThenEnrich struct {
	Type          string       `hcl:"type,label" yaml:"type"`
	Command       string       `hcl:"command,optional" yaml:"command"`
	Args          []string     `hcl:"args,optional" yaml:"args"`
	ArrayKey      string       `hcl:"array_key" yaml:"array_key"`
	IdentifierKey string       `hcl:"identifier_key" yaml:"identifier_key"`
	Concurrency   *int         `hcl:"concurrency,optional" yaml:"concurrency"`
	Details       []fileDetail `hcl:"detail,block" yaml:"details"`
	Partitions    []string     `hcl:"partitions,optional" yaml:"partitions"`
}

type fileDetail struct {
	Field   string   `hcl:"field,label" yaml:"field"`
	Command string   `hcl:"command,optional" yaml:"command"`
	Args    []string `hcl:"args,optional" yaml:"args"`
}

// DefaultEnrichConcurrency applies when a catalog file omits concurrency.
const DefaultEnrichConcurrency = 5

func (f fileService) build() (Service, error) {
	category, err := ParseCategory(f.Category)
	if err != nil {
		return Service{}, errors.Wrapf(err, "service %q", f.Name)
	}
	b := NewBuilder(f.Name, category, ParsePolicy(f.Policy)).Alias(f.Aliases...)
	var errs []error
	fail := func(kind, name string, err error) {
		errs = append(errs, errors.Wrapf(err, "service %q: %s %q", f.Name, kind, name))
	}

	for _, pl := range f.PlainLists {
		op, err := fileCommand{pl.Command, pl.Args}.operation()
		if err != nil {
			fail("plain_list", pl.Type, err)
			continue
		}
		b.Add(ResourceConfig{ResourceType: pl.Type, Mode: PlainList{Operation: op}, Partitions: pl.Partitions})
	}

	for _, batch := range f.Batches {
		entries := make([]NamedOperation, 0, len(batch.Operations))
		for _, o := range batch.Operations {
			op, err := fileCommand{o.Command, o.Args}.operation()
			if err != nil {
				fail("batch operation", o.Type, err)
				continue
			}
			entries = append(entries, NamedOperation{ResourceType: o.Type, Operation: op})
		}
		b.Add(ResourceConfig{ResourceType: batch.Group, Mode: IndependentBatch{Operations: entries}, Partitions: batch.Partitions})
	}

	for _, le := range f.ListThenEnrich {
		list, err := fileCommand{le.Command, le.Args}.operation()
		if err != nil {
			fail("list_then_enrich", le.Type, err)
			continue
		}
		concurrency := DefaultEnrichConcurrency
		if le.Concurrency != nil {
			concurrency = *le.Concurrency
		}
		details := make([]DetailTemplate, 0, len(le.Details))
		for _, d := range le.Details {
			op, err := fileCommand{d.Command, d.Args}.operation()
			if err != nil {
				fail("detail", d.Field, err)
				continue
			}
			details = append(details, DetailTemplate{Field: d.Field, Operation: op})
		}
		b.Add(ResourceConfig{
			ResourceType: le.Type,
			Mode: ListThenEnrich{
				List:          list,
				ArrayKey:      le.ArrayKey,
				IdentifierKey: le.IdentifierKey,
				Details:       details,
				Concurrency:   concurrency,
			},
			Partitions: le.Partitions,
		})
	}

	svc, err := b.Build()
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Service{}, errors.Mark(errors.Join(errs...), ErrInvalidConfig)
	}
	return svc, nil
}

func (f fileCatalog) build() ([]Service, error) {
	var (
		services []Service
		errs     []error
	)
	for _, s := range f.Services {
		svc, err := s.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		services = append(services, svc)
	}
	if len(errs) > 0 {
		return nil, errors.Mark(errors.Join(errs...), ErrInvalidConfig)
	}
	return services, nil
}

// LoadFiles reads catalog files. Directories are walked for .hcl, .yaml and
// .yml files.
func LoadFiles(paths ...string) ([]Service, error) {
	var services []Service
	for _, root := range paths {
		files, err := catalogFiles(root)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			src, err := os.ReadFile(file)
			if err != nil {
				return nil, errors.Wrapf(err, "read catalog file %s", file)
			}
			loaded, err := Parse(file, src)
			if err != nil {
				return nil, err
			}
			services = append(services, loaded...)
		}
	}
	return services, nil
}

// Parse decodes one catalog file; the format follows the file extension.
func Parse(filename string, src []byte) ([]Service, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		return ParseHCL(filename, src)
	case ".yaml", ".yml":
		return ParseYAML(filename, src)
	default:
		return nil, errors.Mark(errors.Newf("catalog file %s: unsupported extension", filename), ErrInvalidConfig)
	}
}

func catalogFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog path %s", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".hcl", ".yaml", ".yml":
			if !d.IsDir() {
				files = append(files, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk catalog dir %s", root)
	}
	return files, nil
}
