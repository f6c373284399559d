// Package remote declares the boundary the collector uses to run one
// operation against a cloud account.
package remote

import (
	"context"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/errors"
)

// ErrOperation marks every failed remote operation, whatever the cause.
var ErrOperation = errors.New("remote operation failed")

// Client performs one operation and returns the decoded document. It must be
// safe for concurrent use.
type Client interface {
	Perform(ctx context.Context, op catalog.Operation) (any, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, op catalog.Operation) (any, error)

func (f ClientFunc) Perform(ctx context.Context, op catalog.Operation) (any, error) {
	return f(ctx, op)
}

// Failed wraps err so that errors.Is(err, ErrOperation) holds.
func Failed(err error, op catalog.Operation) error {
	return errors.Mark(errors.Wrapf(err, "operation %s", op), ErrOperation)
}
