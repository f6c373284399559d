// Package progress reports collection task lifecycle events to a terminal
// or a logger.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"cloudcollector/internal/collect"
	"cloudcollector/internal/logging"
)

// CLIObserver prints one line per finished task.
type CLIObserver struct {
	w       io.Writer
	mu      sync.Mutex
	started time.Time
	done    int
	total   int
}

var _ collect.Observer = (*CLIObserver)(nil)

// NewCLIObserver writes to w, or stdout when w is nil. total is the number
// of tasks expected and may be zero when unknown.
func NewCLIObserver(w io.Writer, total int) *CLIObserver {
	if w == nil {
		w = os.Stdout
	}
	return &CLIObserver{w: w, total: total, started: time.Now()}
}

func (o *CLIObserver) TaskStarted(t collect.Task) {}

func (o *CLIObserver) TaskFinished(t collect.Task, out collect.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done++

	counter := fmt.Sprintf("[%d]", o.done)
	if o.total > 0 {
		counter = fmt.Sprintf("[%d/%d]", o.done, o.total)
	}
	name := fmt.Sprintf("%-16s %-16s %s", t.Service, t.Partition, t.ResourceType)
	if out.OK() {
		pterm.Fprintln(o.w, pterm.Sprintf("✅ %s %s %s", pterm.Gray(counter), name, pterm.Green(fmt.Sprintf("%.1fs", out.Duration.Seconds()))))
		return
	}
	pterm.Fprintln(o.w, pterm.Sprintf("❌ %s %s %s", pterm.Gray(counter), name, pterm.Red(out.Err.Error())))
}

// Complete prints the run summary.
func (o *CLIObserver) Complete(stats collect.Stats) {
	o.mu.Lock()
	defer o.mu.Unlock()
	pterm.Fprintln(o.w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if stats.Failed == 0 {
		pterm.Success.WithWriter(o.w).Printf("All %d collectors completed in %.1fs\n", stats.Tasks, time.Since(o.started).Seconds())
	} else {
		pterm.Warning.WithWriter(o.w).Printf("%d of %d collectors failed\n", stats.Failed, stats.Tasks)
	}
	pterm.Fprintln(o.w, pterm.Sprintf("📊 Total collections: %s", pterm.LightCyan(stats.Records)))
}

// LogObserver logs task lifecycle events.
type LogObserver struct {
	Logger *zap.SugaredLogger
}

var _ collect.Observer = LogObserver{}

func (o LogObserver) TaskStarted(t collect.Task) {
	logging.Or(o.Logger).Debugw("task started", "service", t.Service, "partition", t.Partition, "resource_type", t.ResourceType)
}

func (o LogObserver) TaskFinished(t collect.Task, out collect.Outcome) {
	log := logging.Or(o.Logger)
	if out.OK() {
		log.Infow("task finished", "service", t.Service, "partition", t.Partition, "resource_type", t.ResourceType,
			"records", out.Records, "duration", out.Duration)
		return
	}
	log.Warnw("task failed", "service", t.Service, "partition", t.Partition, "resource_type", t.ResourceType,
		"duration", out.Duration, "error", out.Err)
}

// Multi fans events out to several observers.
type Multi []collect.Observer

func (m Multi) TaskStarted(t collect.Task) {
	for _, o := range m {
		o.TaskStarted(t)
	}
}

func (m Multi) TaskFinished(t collect.Task, out collect.Outcome) {
	for _, o := range m {
		o.TaskFinished(t, out)
	}
}
