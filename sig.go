package transmitter

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSigHandler calls cancel when SIGINT or SIGTERM arrives.
func WithSigHandler(ctx context.Context, cancel func()) context.Context {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case s := <-sigs:
			logger.Info("signal received", "signal", s)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx
}
