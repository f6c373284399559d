package catalog

import (
	"slices"
	"strings"

	"cloudcollector/internal/errors"
)

// Category groups services for display.
type Category string

const (
	Compute     Category = "compute"
	Storage     Category = "storage"
	Networking  Category = "networking"
	Security    Category = "security"
	Management  Category = "management"
	Integration Category = "integration"
	DevTools    Category = "devtools"
	Custom      Category = "custom"
)

// Categories lists categories in display order.
var Categories = []Category{Compute, Storage, Networking, Security, Management, Integration, DevTools, Custom}

// DisplayName is the heading used by list-services.
func (c Category) DisplayName() string {
	switch c {
	case Compute:
		return "🔧 Compute & Containers"
	case Storage:
		return "💾 Storage & Database"
	case Networking:
		return "🌐 Networking"
	case Security:
		return "🔐 Security & Identity"
	case Management:
		return "📊 Management & Monitoring"
	case Integration:
		return "📬 Application Integration"
	case DevTools:
		return "🐳 Developer Tools"
	default:
		return "🧩 Custom"
	}
}

// ParseCategory accepts a category name case-insensitively. Empty means
// Custom.
func ParseCategory(s string) (Category, error) {
	v := Category(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return Custom, nil
	}
	if slices.Contains(Categories, v) {
		return v, nil
	}
	return "", errors.Mark(errors.Newf("unknown category %q", s), ErrInvalidConfig)
}

// Catalog is an ordered set of services addressable by name or alias.
type Catalog struct {
	services []Service
}

// New builds a catalog. Names and aliases must be unique.
func New(services ...Service) (*Catalog, error) {
	c := &Catalog{}
	seen := make(map[string]string)
	for _, svc := range services {
		for _, name := range append([]string{svc.Name}, svc.Aliases...) {
			key := strings.ToLower(name)
			if owner, dup := seen[key]; dup {
				return nil, errors.Mark(errors.Newf("name %q used by services %q and %q", name, owner, svc.Name), ErrInvalidConfig)
			}
			seen[key] = svc.Name
		}
		c.services = append(c.services, svc)
	}
	return c, nil
}

// Services returns the services in catalog order.
func (c *Catalog) Services() []Service {
	return slices.Clone(c.services)
}

// Names returns the service names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.services))
	for i, svc := range c.services {
		names[i] = svc.Name
	}
	return names
}

// Lookup finds a service by name or alias, case-insensitively.
func (c *Catalog) Lookup(name string) (Service, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, svc := range c.services {
		if strings.ToLower(svc.Name) == key {
			return svc, true
		}
		for _, alias := range svc.Aliases {
			if strings.ToLower(alias) == key {
				return svc, true
			}
		}
	}
	return Service{}, false
}

// Select resolves names to services, in the order given. An empty list
// selects everything.
func (c *Catalog) Select(names []string) ([]Service, error) {
	if len(names) == 0 {
		return c.Services(), nil
	}
	var (
		out     []Service
		unknown []string
		seen    = make(map[string]struct{})
	)
	for _, name := range names {
		svc, ok := c.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if _, dup := seen[svc.Name]; dup {
			continue
		}
		seen[svc.Name] = struct{}{}
		out = append(out, svc)
	}
	if len(unknown) > 0 {
		err := errors.Newf("unknown service(s): %s", strings.Join(unknown, ", "))
		return nil, errors.WithHint(err, "run `cloudcollector aws list-services` to see what is available")
	}
	return out, nil
}

// Merge returns a catalog where overrides replace services with the same
// name and new services are appended.
func (c *Catalog) Merge(overrides ...Service) (*Catalog, error) {
	merged := c.Services()
	for _, o := range overrides {
		idx := slices.IndexFunc(merged, func(s Service) bool { return strings.EqualFold(s.Name, o.Name) })
		if idx >= 0 {
			merged[idx] = o
			continue
		}
		merged = append(merged, o)
	}
	return New(merged...)
}

// CategoryGroup is one heading of the list-services output.
type CategoryGroup struct {
	Category Category
	Services []string
}

// ByCategory groups service names under categories in display order,
// skipping empty categories.
func (c *Catalog) ByCategory() []CategoryGroup {
	var groups []CategoryGroup
	for _, cat := range Categories {
		var names []string
		for _, svc := range c.services {
			if svc.Category == cat {
				names = append(names, svc.Name)
			}
		}
		if len(names) > 0 {
			groups = append(groups, CategoryGroup{Category: cat, Services: names})
		}
	}
	return groups
}
