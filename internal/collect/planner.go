package collect

import (
	"slices"
	"strings"

	"cloudcollector/internal/catalog"
)

// PlanOptions tunes task planning.
type PlanOptions struct {
	// RegionServices, when set, limits the services collected in every
	// partition after the first one.
	RegionServices []string
}

type taskKey struct {
	service, partition, resourceType string
}

// Plan expands services across partitions. partitions[0] is the default
// partition. Services whose policy resolves to the same partition for
// several requested partitions, such as global services, are planned once:
// the planner keeps the set of (service, partition, resource type) triples
// it has already scheduled.
func Plan(services []catalog.Service, partitions []string, opts PlanOptions) []Task {
	seen := make(map[taskKey]struct{})
	var tasks []Task
	for _, svc := range services {
		for i, requested := range partitions {
			if i > 0 && !allowedInExtra(svc, opts.RegionServices) {
				continue
			}
			resolved := svc.Policy.Resolve(requested)
			for _, rc := range svc.Resources {
				if !rc.AppliesTo(resolved) {
					continue
				}
				key := taskKey{svc.Name, resolved, rc.ResourceType}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				tasks = append(tasks, Task{
					Service:      svc.Name,
					Partition:    resolved,
					ResourceType: rc.ResourceType,
					Mode:         rc.Mode,
				})
			}
		}
	}
	return tasks
}

func allowedInExtra(svc catalog.Service, regionServices []string) bool {
	if len(regionServices) == 0 {
		return true
	}
	return slices.ContainsFunc(regionServices, func(name string) bool {
		name = strings.TrimSpace(name)
		return strings.EqualFold(name, svc.Name) || slices.ContainsFunc(svc.Aliases, func(a string) bool {
			return strings.EqualFold(name, a)
		})
	})
}
