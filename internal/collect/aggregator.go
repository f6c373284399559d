package collect

import (
	"slices"
	"sync"

	"cloudcollector/models"
)

// Aggregator accumulates records from concurrent tasks. A single goroutine
// owns the slice; producers hand records over a channel. Records are never
// merged or deduplicated.
type Aggregator struct {
	in     chan models.ResourceCollection
	done   chan []models.ResourceCollection
	once   sync.Once
	result []models.ResourceCollection
}

// NewAggregator starts the owning goroutine. Call Snapshot to stop it.
func NewAggregator() *Aggregator {
	a := &Aggregator{
		in:   make(chan models.ResourceCollection, 64),
		done: make(chan []models.ResourceCollection, 1),
	}
	go a.loop()
	return a
}

func (a *Aggregator) loop() {
	var records []models.ResourceCollection
	for r := range a.in {
		records = append(records, r)
	}
	a.done <- records
}

// Add hands records to the aggregator. It is safe from any goroutine but
// must not be called after Snapshot.
func (a *Aggregator) Add(records ...models.ResourceCollection) {
	for _, r := range records {
		a.in <- r
	}
}

// Snapshot closes intake and returns everything added. Later calls return
// the same records.
func (a *Aggregator) Snapshot() []models.ResourceCollection {
	a.once.Do(func() {
		close(a.in)
		a.result = <-a.done
	})
	return slices.Clone(a.result)
}
