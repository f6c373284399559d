// Package collect turns catalog services into collection tasks and runs
// them with bounded concurrency, accumulating the records they produce.
package collect

import (
	"time"

	"cloudcollector/internal/catalog"
)

// Task collects one resource type of one service in one partition.
type Task struct {
	Service      string
	Partition    string
	ResourceType string
	Mode         catalog.CollectionMode
	// Group is the batch label a task was split from, empty otherwise.
	Group string
}

func (t Task) String() string {
	return t.Service + "/" + t.Partition + "/" + t.ResourceType
}

// Outcome reports how a task ended. Err is set when the task produced
// nothing because listing failed, the response was malformed or the run
// was cancelled.
type Outcome struct {
	Records  int
	Err      error
	Duration time.Duration
}

// OK reports whether the task completed its listing.
func (o Outcome) OK() bool { return o.Err == nil }

// Expand splits batch tasks into one task per entry so every entry is
// scheduled on its own under the outer concurrency ceiling. Other tasks are
// returned as is.
func Expand(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		batch, ok := t.Mode.(catalog.IndependentBatch)
		if !ok {
			out = append(out, t)
			continue
		}
		for _, entry := range batch.Operations {
			out = append(out, Task{
				Service:      t.Service,
				Partition:    t.Partition,
				ResourceType: entry.ResourceType,
				Mode:         catalog.PlainList{Operation: entry.Operation},
				Group:        t.ResourceType,
			})
		}
	}
	return out
}
