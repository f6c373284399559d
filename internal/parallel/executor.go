// Package parallel provides the bounded fan-out primitive used at both levels
// of collection: across resource types and across items being enriched.
package parallel

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Map applies transform to every item with at most limit transforms in flight
// and returns once all of them have finished. A limit below 1 runs items one
// at a time.
//
// Results are returned in completion order, not input order. Callers that
// need to correlate results with inputs must carry the key inside R.
//
// There is no error channel and no cancellation: a transform that can fail
// encodes the failure in R, and a transform that wants to stop early checks
// its own context and returns a skipped result.
func Map[T, R any](items []T, limit int, transform func(T) R) []R {
	if limit < 1 {
		limit = 1
	}

	var (
		mu  sync.Mutex
		out = make([]R, 0, len(items))
		g   errgroup.Group
	)
	g.SetLimit(limit)

	for _, item := range items {
		g.Go(func() error {
			r := transform(item)
			mu.Lock()
			out = append(out, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
