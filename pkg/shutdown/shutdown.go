package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tagme/pkg/logger"
)

// SetupSignalHandler installs handlers for SIGINT/SIGTERM and returns
// a cancellable context. The returned context is cancelled when any of
// the watched signals arrives. Use the cancel function to stop
// watching and release resources.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Info("signal_received", "signal", s.String(), "msg", "shutdown requested")
		cancel()
	}()

	return ctx, cancel
}
