package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ResourceCollection is one collected resource type for one service and
// region. Resources holds the decoded document as returned by the remote
// call, or the enriched item array for list-then-enrich resources.
type ResourceCollection struct {
	Service      string    `json:"service"`
	Region       string    `json:"region"`
	ResourceType string    `json:"resource_type"`
	Resources    any       `json:"resources"`
	CollectedAt  time.Time `json:"collected_at"`
}

// Metadata describes a collection run.
type Metadata struct {
	RunID       uuid.UUID `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Profile     string    `json:"aws_profile"`
	Regions     []string  `json:"regions"`
	Services    []string  `json:"services"`
}

// Group is every resource type collected for one service in one region,
// keyed by resource type. It is the unit written to files and objects.
type Group struct {
	Service     string         `json:"service"`
	Region      string         `json:"region"`
	Resources   map[string]any `json:"resources"`
	CollectedAt time.Time      `json:"collected_at"`
	// RunID and Profile are set on objects written to storage so a reader
	// can attribute the group without extra lookups.
	RunID   string `json:"run_id,omitempty"`
	Profile string `json:"profile,omitempty"`
}

// GroupRecords groups records by service and region, sorted by service then
// region. CollectedAt is taken from the first record of each group. A
// resource type seen twice in one group keeps the later record.
func GroupRecords(records []ResourceCollection) []Group {
	type key struct{ service, region string }
	index := make(map[key]int)
	var groups []Group
	for _, r := range records {
		k := key{r.Service, r.Region}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{
				Service:     r.Service,
				Region:      r.Region,
				Resources:   make(map[string]any),
				CollectedAt: r.CollectedAt,
			})
		}
		groups[i].Resources[r.ResourceType] = r.Resources
	}
	sort.Slice(groups, func(a, b int) bool {
		if groups[a].Service != groups[b].Service {
			return groups[a].Service < groups[b].Service
		}
		return groups[a].Region < groups[b].Region
	})
	return groups
}

// Records expands the group back into one record per resource type, sorted
// by resource type.
func (g Group) Records() []ResourceCollection {
	out := make([]ResourceCollection, 0, len(g.Resources))
	for rt, payload := range g.Resources {
		out = append(out, ResourceCollection{
			Service:      g.Service,
			Region:       g.Region,
			ResourceType: rt,
			Resources:    payload,
			CollectedAt:  g.CollectedAt,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ResourceType < out[b].ResourceType })
	return out
}
