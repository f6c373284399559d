// Package errors re-exports github.com/cockroachdb/errors so the rest of the
// collector wraps, marks and inspects errors through one import.
//
//	if err := cli.ValidateCredentials(ctx); err != nil {
//	    return errors.Wrap(err, "credential validation failed")
//	}
//
// Sentinels declared elsewhere are attached with Mark and tested with Is.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
	Join         = crdb.Join
)

// User-facing hints and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)
