package graceful

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGracefulContext(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := Context(context.Background(), zap.New(core).Sugar())
	defer cancel()

	go func() {
		time.Sleep(100 * time.Millisecond) // Give the signal handler time to get ready
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
			t.Errorf("Failed to send SIGINT: %v", err)
		}
	}()

	select {
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("Expected context.Canceled error, got %v", ctx.Err())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Test timed out waiting for context to be canceled.")
	}

	deadline := time.Now().Add(time.Second)
	for logs.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one shutdown log entry, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["signal"]; got != "interrupt" {
		t.Errorf("expected signal=interrupt, got %v", got)
	}
}

func TestGracefulContext_ParentCanceled(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := Context(parent, nil)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("child context not canceled with its parent")
	}
}
