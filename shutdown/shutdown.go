package shutdown

import (
	"context"
	"os"
)

// Context returns a context that is canceled on the first termination
// signal. Repeated signals are absorbed; cancellation is idempotent.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 2)
	Notify(ch)
	go func() {
		for {
			select {
			case <-ch:
				cancel()
			case <-ctx.Done():
				return
			}
		}
	}()
	return ctx, cancel
}
