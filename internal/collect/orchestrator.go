package collect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/enrich"
	"cloudcollector/internal/errors"
	"cloudcollector/internal/parallel"
	"cloudcollector/internal/remote"
	"cloudcollector/models"
	"cloudcollector/pkg/document"
)

// Phase is a step of one task's lifecycle.
type Phase int

const (
	Idle Phase = iota
	Listing
	Enriching
	Assembling
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Listing:
		return "listing"
	case Enriching:
		return "enriching"
	case Assembling:
		return "assembling"
	case Done:
		return "done"
	}
	return "unknown"
}

var (
	// ErrMalformed marks a listing whose document lacks the expected array.
	ErrMalformed = errors.New("malformed listing")
	// ErrUnsupportedMode is returned for a mode the orchestrator cannot run
	// directly. Batches must be split with Expand first.
	ErrUnsupportedMode = errors.New("unsupported collection mode")
)

// orchestration drives one task from Idle to Done.
type orchestration struct {
	task      Task
	client    remote.Client
	augmenter *enrich.Augmenter
	log       *zap.SugaredLogger
	now       func() time.Time

	phase   Phase
	trace   []Phase
	records []models.ResourceCollection
}

func (o *orchestration) advance(p Phase) {
	o.phase = p
	o.trace = append(o.trace, p)
}

// run never returns an error to its caller: every failure ends in Done with
// no records and is reported in the Outcome.
func (o *orchestration) run(ctx context.Context) error {
	o.advance(Idle)
	defer o.advance(Done)

	if err := ctx.Err(); err != nil {
		return err
	}

	switch m := o.task.Mode.(type) {
	case catalog.PlainList:
		return o.plainList(ctx, m)
	case catalog.ListThenEnrich:
		return o.listThenEnrich(ctx, m)
	default:
		kind := "nil"
		if m != nil {
			kind = m.Kind()
		}
		return errors.Wrapf(ErrUnsupportedMode, "%s", kind)
	}
}

func (o *orchestration) list(ctx context.Context, op catalog.Operation) (any, error) {
	o.advance(Listing)
	return o.client.Perform(ctx, op.Bind(o.task.Partition))
}

func (o *orchestration) plainList(ctx context.Context, m catalog.PlainList) error {
	doc, err := o.list(ctx, m.Operation)
	if err != nil {
		return err
	}
	o.assemble(doc)
	return nil
}

func (o *orchestration) listThenEnrich(ctx context.Context, m catalog.ListThenEnrich) error {
	doc, err := o.list(ctx, m.List)
	if err != nil {
		return err
	}
	items, ok := document.ArrayAt(doc, m.ArrayKey)
	if !ok {
		return errors.Wrapf(ErrMalformed, "no array at %q", m.ArrayKey)
	}

	if len(m.Details) > 0 && len(items) > 0 {
		o.advance(Enriching)
		o.log.Debugw("enriching items", "task", o.task.String(), "items", len(items), "concurrency", m.Concurrency)
		items = o.enrich(ctx, items, m)
	}
	o.assemble(map[string]any{m.ArrayKey: items})
	return nil
}

type indexedItem struct {
	index int
	item  any
}

// enrich returns the items in their listed order.
func (o *orchestration) enrich(ctx context.Context, items []any, m catalog.ListThenEnrich) []any {
	in := make([]indexedItem, len(items))
	for i, it := range items {
		in[i] = indexedItem{index: i, item: it}
	}
	enriched := parallel.Map(in, m.Concurrency, func(it indexedItem) indexedItem {
		return indexedItem{
			index: it.index,
			item:  o.augmenter.EnrichItem(ctx, it.item, m.IdentifierKey, m.Details, o.task.Partition),
		}
	})
	out := make([]any, len(items))
	for _, it := range enriched {
		out[it.index] = it.item
	}
	return out
}

func (o *orchestration) assemble(payload any) {
	o.advance(Assembling)
	o.records = append(o.records, models.ResourceCollection{
		Service:      o.task.Service,
		Region:       o.task.Partition,
		ResourceType: o.task.ResourceType,
		Resources:    payload,
		CollectedAt:  o.now().UTC(),
	})
}
