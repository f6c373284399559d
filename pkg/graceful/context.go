// Package graceful cancels a context on SIGINT or SIGTERM.
package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Context returns a child of ctx that is canceled when the process receives
// SIGINT or SIGTERM. A second signal is left to the default handler once the
// returned cancel func has run. logger may be nil.
func Context(ctx context.Context, logger *zap.SugaredLogger) (context.Context, context.CancelFunc) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Warnw("received termination signal, finishing with what was collected", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
