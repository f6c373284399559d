package catalog

import "strings"

// PolicyKind selects how a service's partition is chosen.
type PolicyKind int

const (
	// Regional services run in the requested partition.
	Regional PolicyKind = iota
	// Global services always run in GlobalPartition.
	Global
	// Fixed services always run in one specific partition, e.g. a control
	// plane that only lives in us-east-1.
	Fixed
)

// PartitionPolicy resolves the partition a service's operations run in.
type PartitionPolicy struct {
	Kind      PolicyKind
	Partition string
}

var (
	RegionalPolicy = PartitionPolicy{Kind: Regional}
	GlobalPolicy   = PartitionPolicy{Kind: Global}
)

// FixedPolicy pins a service to partition.
func FixedPolicy(partition string) PartitionPolicy {
	return PartitionPolicy{Kind: Fixed, Partition: partition}
}

// ParsePolicy reads "regional" (or empty), "global", or a partition name.
func ParsePolicy(s string) PartitionPolicy {
	switch v := strings.TrimSpace(s); strings.ToLower(v) {
	case "", "regional":
		return RegionalPolicy
	case GlobalPartition:
		return GlobalPolicy
	default:
		return FixedPolicy(v)
	}
}

// Resolve returns the concrete partition for a request against requested.
func (p PartitionPolicy) Resolve(requested string) string {
	switch p.Kind {
	case Global:
		return GlobalPartition
	case Fixed:
		return p.Partition
	default:
		return requested
	}
}

// PerPartition reports whether the service is collected once per requested
// partition rather than once per run.
func (p PartitionPolicy) PerPartition() bool {
	return p.Kind == Regional
}

func (p PartitionPolicy) String() string {
	switch p.Kind {
	case Global:
		return GlobalPartition
	case Fixed:
		return "fixed:" + p.Partition
	default:
		return "regional"
	}
}
