package httpapi

import (
	"context"
)

// serverBaseCtx is canceled on process shutdown so in-flight generation work
// stops even when clients stay connected. Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context canceled when either a or b is done. The
// returned cancel func must be called when the handler ends to release the
// watcher goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
		case <-b.Done():
		case <-ctx.Done():
		}
		cancel()
	}()
	return ctx, cancel
}
