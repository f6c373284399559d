// Package catalog describes what the collector fetches: services, the
// resource types they expose and the mode each one is fetched with. Nothing
// here performs I/O.
package catalog

import (
	"strings"

	"cloudcollector/internal/errors"
)

// ErrInvalidConfig marks every construction-time validation failure.
var ErrInvalidConfig = errors.New("invalid collection config")

// Service is a named set of resource configs sharing a partition policy.
type Service struct {
	Name      string
	Category  Category
	Policy    PartitionPolicy
	Aliases   []string
	Resources []ResourceConfig
}

// Builder accumulates resource configs for one service. Validation errors
// are collected and reported by Build, so calls can be chained.
type Builder struct {
	svc  Service
	errs []error
}

// NewBuilder starts a service definition.
func NewBuilder(name string, category Category, policy PartitionPolicy) *Builder {
	b := &Builder{svc: Service{Name: name, Category: category, Policy: policy}}
	if strings.TrimSpace(name) == "" {
		b.errs = append(b.errs, errors.New("service has no name"))
	}
	if policy.Kind == Fixed && strings.TrimSpace(policy.Partition) == "" {
		b.errs = append(b.errs, errors.Newf("service %q: fixed partition policy without a partition", name))
	}
	return b
}

// Alias registers alternative names the service can be selected by.
func (b *Builder) Alias(names ...string) *Builder {
	b.svc.Aliases = append(b.svc.Aliases, names...)
	return b
}

// PlainList adds a resource fetched by a single operation.
func (b *Builder) PlainList(resourceType string, args ...string) *Builder {
	return b.Add(ResourceConfig{
		ResourceType: resourceType,
		Mode:         PlainList{Operation: NewOperation(args...)},
	})
}

// Batch adds a group of independent operations, labelled group.
func (b *Builder) Batch(group string, entries ...NamedOperation) *Builder {
	return b.Add(ResourceConfig{
		ResourceType: group,
		Mode:         IndependentBatch{Operations: entries},
	})
}

// ListThenEnrich adds a resource whose listed items are enriched by details.
func (b *Builder) ListThenEnrich(resourceType string, list Operation, arrayKey, identifierKey string, concurrency int, details ...DetailTemplate) *Builder {
	return b.Add(ResourceConfig{
		ResourceType: resourceType,
		Mode: ListThenEnrich{
			List:          list,
			ArrayKey:      arrayKey,
			IdentifierKey: identifierKey,
			Details:       details,
			Concurrency:   concurrency,
		},
	})
}

// Only limits the most recently added resource to the given partitions.
func (b *Builder) Only(partitions ...string) *Builder {
	n := len(b.svc.Resources)
	if n == 0 {
		b.errs = append(b.errs, errors.Newf("service %q: Only called before any resource", b.svc.Name))
		return b
	}
	b.svc.Resources[n-1].Partitions = append(b.svc.Resources[n-1].Partitions, partitions...)
	return b
}

// Add validates rc and appends it.
func (b *Builder) Add(rc ResourceConfig) *Builder {
	if err := ValidateResource(rc); err != nil {
		b.errs = append(b.errs, errors.Wrapf(err, "service %q", b.svc.Name))
		return b
	}
	for _, existing := range b.svc.Resources {
		if existing.ResourceType == rc.ResourceType {
			b.errs = append(b.errs, errors.Newf("service %q: duplicate resource type %q", b.svc.Name, rc.ResourceType))
			return b
		}
	}
	b.svc.Resources = append(b.svc.Resources, rc)
	return b
}

// Build returns the service, or every validation error joined and marked
// with ErrInvalidConfig.
func (b *Builder) Build() (Service, error) {
	if len(b.errs) > 0 {
		return Service{}, errors.Mark(errors.Join(b.errs...), ErrInvalidConfig)
	}
	if len(b.svc.Resources) == 0 {
		return Service{}, errors.Mark(errors.Newf("service %q declares no resources", b.svc.Name), ErrInvalidConfig)
	}
	return b.svc, nil
}

// MustBuild is Build for definitions compiled into the binary.
func (b *Builder) MustBuild() Service {
	svc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return svc
}

// ValidateResource checks a single resource config.
func ValidateResource(rc ResourceConfig) error {
	if strings.TrimSpace(rc.ResourceType) == "" {
		return errors.New("resource has no type")
	}
	switch m := rc.Mode.(type) {
	case PlainList:
		if m.Operation.Empty() {
			return errors.Newf("resource %q: empty operation", rc.ResourceType)
		}
	case IndependentBatch:
		if len(m.Operations) == 0 {
			return errors.Newf("batch %q: no operations", rc.ResourceType)
		}
		seen := make(map[string]struct{}, len(m.Operations))
		for _, op := range m.Operations {
			if strings.TrimSpace(op.ResourceType) == "" {
				return errors.Newf("batch %q: entry without resource type", rc.ResourceType)
			}
			if op.Operation.Empty() {
				return errors.Newf("batch %q: entry %q has an empty operation", rc.ResourceType, op.ResourceType)
			}
			if _, dup := seen[op.ResourceType]; dup {
				return errors.Newf("batch %q: duplicate entry %q", rc.ResourceType, op.ResourceType)
			}
			seen[op.ResourceType] = struct{}{}
		}
	case ListThenEnrich:
		switch {
		case m.List.Empty():
			return errors.Newf("resource %q: empty list operation", rc.ResourceType)
		case m.ArrayKey == "":
			return errors.Newf("resource %q: no array key", rc.ResourceType)
		case m.IdentifierKey == "":
			return errors.Newf("resource %q: no identifier key", rc.ResourceType)
		case m.Concurrency <= 0:
			return errors.Newf("resource %q: enrich concurrency must be at least 1, got %d", rc.ResourceType, m.Concurrency)
		}
		fields := make(map[string]struct{}, len(m.Details))
		for _, d := range m.Details {
			if err := d.validate(); err != nil {
				return errors.Wrapf(err, "resource %q", rc.ResourceType)
			}
			if _, dup := fields[d.Field]; dup {
				return errors.Newf("resource %q: duplicate detail field %q", rc.ResourceType, d.Field)
			}
			fields[d.Field] = struct{}{}
		}
	case nil:
		return errors.Newf("resource %q: no collection mode", rc.ResourceType)
	}
	return nil
}
