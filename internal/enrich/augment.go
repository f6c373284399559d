// Package enrich attaches per-item detail documents to listed items. Detail
// fetches for one item run in parallel and are best effort: a failed fetch
// leaves its field unset and never fails the item.
package enrich

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/logging"
	"cloudcollector/internal/parallel"
	"cloudcollector/internal/remote"
	"cloudcollector/pkg/document"
)

// DefaultConcurrency bounds the detail fetches running for one item.
const DefaultConcurrency = 10

// Augmenter runs detail templates for items.
type Augmenter struct {
	Client      remote.Client
	Concurrency int
	Logger      *zap.SugaredLogger
}

// New returns an Augmenter with the default per-item concurrency.
func New(client remote.Client, logger *zap.SugaredLogger) *Augmenter {
	return &Augmenter{Client: client, Concurrency: DefaultConcurrency, Logger: logger}
}

func (a *Augmenter) concurrency() int {
	if a.Concurrency < 1 {
		return DefaultConcurrency
	}
	return a.Concurrency
}

// Augment returns a copy of base with one field per successful template.
// base is returned unmodified when it is not an object, when identifier is
// empty or when there are no templates.
func (a *Augmenter) Augment(ctx context.Context, base any, identifier string, templates []catalog.DetailTemplate, partition string) any {
	obj, ok := base.(map[string]any)
	if !ok || identifier == "" || len(templates) == 0 {
		return base
	}
	log := logging.Or(a.Logger)

	outcomes := parallel.Map(Steps(identifier, partition, templates), a.concurrency(), func(s Step) Outcome {
		return s.Run(ctx, a.Client)
	})

	fields := make(map[string]any, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			log.Debugw("detail fetch failed", "identifier", identifier, "field", o.Field, "error", o.Err)
			continue
		}
		fields[o.Field] = o.Value
	}
	if len(fields) == 0 {
		return base
	}
	return document.With(obj, fields)
}

// EnrichItem reads identifierKey from item and augments it. Items without a
// usable identifier pass through unchanged.
func (a *Augmenter) EnrichItem(ctx context.Context, item any, identifierKey string, templates []catalog.DetailTemplate, partition string) any {
	id, ok := Identifier(item, identifierKey)
	if !ok {
		return item
	}
	return a.Augment(ctx, item, id, templates, partition)
}

// Identifier extracts a string or numeric identifier from an object.
func Identifier(item any, key string) (string, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return "", false
	}
	switch v := obj[key].(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	}
	return "", false
}
