package progress

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cloudcollector/internal/collect"
)

var task = collect.Task{Service: "lambda", Partition: "eu-west-1", ResourceType: "functions"}

func TestCLIObserver(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var buf bytes.Buffer
	obs := NewCLIObserver(&buf, 2)
	obs.TaskStarted(task)
	obs.TaskFinished(task, collect.Outcome{Records: 1, Duration: 1500 * time.Millisecond})
	obs.TaskFinished(task, collect.Outcome{Err: errors.New("AccessDenied")})
	obs.Complete(collect.Stats{Tasks: 2, Succeeded: 1, Failed: 1, Records: 1})

	out := buf.String()
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "[2/2]")
	assert.Contains(t, out, "AccessDenied")
	assert.Contains(t, out, "1 of 2 collectors failed")
	assert.Contains(t, out, "Total collections: 1")
}

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := Multi{LogObserver{Logger: zap.New(core).Sugar()}}

	obs.TaskStarted(task)
	obs.TaskFinished(task, collect.Outcome{Records: 1})
	obs.TaskFinished(task, collect.Outcome{Err: errors.New("throttled")})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "task started", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "functions", entries[1].ContextMap()["resource_type"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}
