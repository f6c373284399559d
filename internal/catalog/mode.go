package catalog

import "slices"

// CollectionMode is the closed set of ways a resource type can be fetched:
// PlainList, IndependentBatch and ListThenEnrich.
type CollectionMode interface {
	// Kind names the mode for logs.
	Kind() string
	sealed()
}

// PlainList runs one operation and keeps the document as is.
type PlainList struct {
	Operation Operation
}

// NamedOperation is one entry of an IndependentBatch.
type NamedOperation struct {
	ResourceType string
	Operation    Operation
}

// Entry builds a NamedOperation from tokens.
func Entry(resourceType string, args ...string) NamedOperation {
	return NamedOperation{ResourceType: resourceType, Operation: NewOperation(args...)}
}

// IndependentBatch runs unrelated operations, each producing its own
// resource type.
type IndependentBatch struct {
	Operations []NamedOperation
}

// ListThenEnrich lists items found at ArrayKey of the List result and
// enriches each one with Details bound to the item's IdentifierKey field.
// Concurrency bounds how many items are enriched at once.
type ListThenEnrich struct {
	List          Operation
	ArrayKey      string
	IdentifierKey string
	Details       []DetailTemplate
	Concurrency   int
}

func (PlainList) Kind() string        { return "plain_list" }
func (IndependentBatch) Kind() string { return "batch" }
func (ListThenEnrich) Kind() string   { return "list_then_enrich" }

func (PlainList) sealed()        {}
func (IndependentBatch) sealed() {}
func (ListThenEnrich) sealed()   {}

// ResourceConfig pairs a resource type with the mode that fetches it. For an
// IndependentBatch, ResourceType labels the group; records are named after
// the entries.
type ResourceConfig struct {
	ResourceType string
	Mode         CollectionMode
	// Partitions, when set, limits collection to these partitions.
	Partitions []string
}

// AppliesTo reports whether the resource is collected in partition.
func (r ResourceConfig) AppliesTo(partition string) bool {
	return len(r.Partitions) == 0 || slices.Contains(r.Partitions, partition)
}
