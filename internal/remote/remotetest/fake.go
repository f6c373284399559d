// Package remotetest provides an in-memory remote.Client for tests.
package remotetest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/errors"
	"cloudcollector/internal/remote"
	"cloudcollector/pkg/document"
)

// Fake answers operations from a table keyed by the rendered operation.
// Unknown operations fail. Every response is a fresh copy.
type Fake struct {
	// Delay is slept before answering, to make overlap observable.
	Delay time.Duration

	mu        sync.Mutex
	responses map[string]any
	failures  map[string]error
	calls     []catalog.Operation

	inFlight atomic.Int64
	peak     atomic.Int64
}

var _ remote.Client = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		responses: make(map[string]any),
		failures:  make(map[string]error),
	}
}

// On registers doc as the answer to op.
func (f *Fake) On(op catalog.Operation, doc any) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[op.String()] = doc
	delete(f.failures, op.String())
	return f
}

// Fail makes op fail.
func (f *Fake) Fail(op catalog.Operation) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op.String()] = errors.New("injected failure")
	delete(f.responses, op.String())
	return f
}

func (f *Fake) Perform(ctx context.Context, op catalog.Operation) (any, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, op)
	doc, ok := f.responses[op.String()]
	failure := f.failures[op.String()]
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, remote.Failed(ctx.Err(), op)
		}
	}

	switch {
	case failure != nil:
		return nil, remote.Failed(failure, op)
	case !ok:
		return nil, remote.Failed(errors.New("no response registered"), op)
	}
	return document.Clone(doc), nil
}

// Peak is the highest number of simultaneous Perform calls seen.
func (f *Fake) Peak() int {
	return int(f.peak.Load())
}

// Calls returns the operations performed so far.
func (f *Fake) Calls() []catalog.Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]catalog.Operation, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount counts performed operations equal to op.
func (f *Fake) CallCount(op catalog.Operation) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Equal(op) {
			n++
		}
	}
	return n
}
