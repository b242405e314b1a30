package gateway

import (
	"context"
	"time"
)

// acquire takes one admission permit, suspending the calling goroutine until
// a slot frees or ctx is canceled. Requests beyond the cap wait here rather
// than being rejected: this is backpressure, not refusal.
func (g *Gateway) acquire(ctx context.Context) error {
	start := time.Now()
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	admissionWaitSeconds.Observe(time.Since(start).Seconds())
	permitsInUse.Inc()
	return nil
}

// release returns a permit. Callers must release exactly once on every exit
// path of the holder.
func (g *Gateway) release() {
	permitsInUse.Dec()
	g.sem.Release(1)
}
