package collect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/enrich"
	"cloudcollector/internal/logging"
	"cloudcollector/internal/parallel"
	"cloudcollector/internal/remote"
	"cloudcollector/models"
)

// DefaultConcurrency is the outer ceiling when none is configured.
const DefaultConcurrency = 5

// Observer is told when tasks start and finish. Implementations must be safe
// for concurrent use; collection never depends on them.
type Observer interface {
	TaskStarted(Task)
	TaskFinished(Task, Outcome)
}

type nopObserver struct{}

func (nopObserver) TaskStarted(Task)           {}
func (nopObserver) TaskFinished(Task, Outcome) {}

// Stats summarises a run.
type Stats struct {
	Tasks     int
	Succeeded int
	Failed    int
	Records   int
	Duration  time.Duration
}

// Result is everything a run produced.
type Result struct {
	Records []models.ResourceCollection
	Stats   Stats
}

// Runner executes tasks with at most Concurrency of them in flight. Each
// list-then-enrich task additionally bounds its own item enrichment.
type Runner struct {
	Client      remote.Client
	Augmenter   *enrich.Augmenter
	Concurrency int
	Observer    Observer
	Logger      *zap.SugaredLogger
	Now         func() time.Time
}

// Collect plans services across partitions and runs the resulting tasks.
func (r *Runner) Collect(ctx context.Context, services []catalog.Service, partitions []string, opts PlanOptions) Result {
	return r.Run(ctx, Plan(services, partitions, opts))
}

// Run executes tasks. It always returns: failed tasks are logged and
// counted, and whatever was collected is in the result.
func (r *Runner) Run(ctx context.Context, tasks []Task) Result {
	var (
		log      = logging.Or(r.Logger)
		observer = r.observer()
		agg      = NewAggregator()
		start    = time.Now()
		limit    = r.Concurrency
	)
	if limit < 1 {
		limit = DefaultConcurrency
	}
	augmenter := r.Augmenter
	if augmenter == nil {
		augmenter = enrich.New(r.Client, r.Logger)
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	tasks = Expand(tasks)
	log.Debugw("collection started", "tasks", len(tasks), "concurrency", limit)

	outcomes := parallel.Map(tasks, limit, func(t Task) Outcome {
		observer.TaskStarted(t)
		o := &orchestration{task: t, client: r.Client, augmenter: augmenter, log: log, now: now}
		began := time.Now()
		err := o.run(ctx)
		out := Outcome{Records: len(o.records), Err: err, Duration: time.Since(began)}
		if err != nil {
			log.Debugw("collection failed", "service", t.Service, "partition", t.Partition, "resource_type", t.ResourceType, "error", err)
		} else {
			agg.Add(o.records...)
		}
		observer.TaskFinished(t, out)
		return out
	})

	records := agg.Snapshot()
	stats := Stats{Tasks: len(outcomes), Records: len(records), Duration: time.Since(start)}
	for _, o := range outcomes {
		if o.OK() {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}
	log.Infow("collection finished",
		"tasks", stats.Tasks,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"records", stats.Records,
		"duration", stats.Duration,
	)
	return Result{Records: records, Stats: stats}
}

func (r *Runner) observer() Observer {
	if r.Observer == nil {
		return nopObserver{}
	}
	return r.Observer
}
