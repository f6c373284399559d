package enrich

import (
	"context"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/remote"
)

// Step is one detail fetch for one item: a template with the identifier and
// partition already bound.
type Step struct {
	Field     string
	Operation catalog.Operation
}

// Outcome is what a Step produced. Err is nil on success.
type Outcome struct {
	Field string
	Value any
	Err   error
}

// Steps binds every template to identifier and partition.
func Steps(identifier, partition string, templates []catalog.DetailTemplate) []Step {
	steps := make([]Step, len(templates))
	for i, t := range templates {
		steps[i] = Step{
			Field:     t.Field,
			Operation: t.For(identifier).Bind(partition),
		}
	}
	return steps
}

// Run performs the step. It never returns an error directly; failures are
// carried in the Outcome.
func (s Step) Run(ctx context.Context, client remote.Client) Outcome {
	doc, err := client.Perform(ctx, s.Operation)
	return Outcome{Field: s.Field, Value: doc, Err: err}
}
