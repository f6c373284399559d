// Package partition decides which regions a run covers.
package partition

import (
	"context"
	"slices"
	"strings"

	"cloudcollector/internal/errors"
)

// ErrUnknownPartition is returned for a requested region the account does
// not know.
var ErrUnknownPartition = errors.New("unknown partition")

const (
	suggestionPrefix = 3
	maxSuggestions   = 5
	maxSample        = 10
)

// Source answers the account-level questions the resolver needs.
// *awscli.CLI implements it.
type Source interface {
	DefaultRegion(ctx context.Context) (string, error)
	Regions(ctx context.Context) ([]string, error)
}

// Resolver validates and orders partitions.
type Resolver struct {
	Source Source
}

// Plan is the ordered list of partitions for one run. Default is always
// first.
type Plan struct {
	Default    string
	Partitions []string
}

// Extra returns the partitions other than the default.
func (p Plan) Extra() []string {
	if len(p.Partitions) <= 1 {
		return nil
	}
	return slices.Clone(p.Partitions[1:])
}

// Default returns the profile's region.
func (r *Resolver) Default(ctx context.Context) (string, error) {
	region, err := r.Source.DefaultRegion(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get default region")
	}
	return region, nil
}

// Validate checks every requested partition against the account's known
// set. The first unknown one is reported with suggestions.
func (r *Resolver) Validate(ctx context.Context, requested []string) error {
	if len(requested) == 0 {
		return nil
	}
	known, err := r.Source.Regions(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query regions")
	}
	for _, p := range requested {
		if slices.Contains(known, p) {
			continue
		}
		err := errors.Mark(errors.Newf("invalid region: %q", p), ErrUnknownPartition)
		if similar := Suggest(p, known); len(similar) > 0 {
			return errors.WithHintf(err, "did you mean one of these? %s", strings.Join(similar, ", "))
		}
		sample := known[:min(len(known), maxSample)]
		return errors.WithHintf(err, "available regions: %s", strings.Join(sample, ", "))
	}
	return nil
}

// Plan resolves the default partition, validates extra and returns the
// default followed by extra without duplicates or blanks.
func (r *Resolver) Plan(ctx context.Context, extra []string) (Plan, error) {
	def, err := r.Default(ctx)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Default: def, Partitions: []string{def}}
	var requested []string
	for _, p := range extra {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(plan.Partitions, p) {
			continue
		}
		plan.Partitions = append(plan.Partitions, p)
		requested = append(requested, p)
	}
	if err := r.Validate(ctx, requested); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Suggest returns up to five known partitions sharing a three-character
// prefix with p.
func Suggest(p string, known []string) []string {
	var out []string
	for _, k := range known {
		if strings.HasPrefix(k, p[:min(len(p), suggestionPrefix)]) || strings.HasPrefix(p, k[:min(len(k), suggestionPrefix)]) {
			out = append(out, k)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
