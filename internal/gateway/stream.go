package gateway

import (
	"context"
)

// GenerateStream runs one streaming generation session. Each fragment is
// forwarded to emit as one discrete unit, in order. On validation failure the
// session emits exactly one error fragment and returns. On success a producer
// goroutine owns the admission permit for its entire run and feeds a bounded
// fragment channel; the consumer loop forwards fragments until the channel
// closes, ctx is canceled (client disconnect or shutdown), or emit fails.
//
// Cancellation reaches the producer through ctx, so an abandoned stream stops
// generation work instead of merely stopping forwarding.
func (g *Gateway) GenerateStream(ctx context.Context, modelName, prompt string, maxTokens int, emit func(string) error) error {
	if maxTokens <= 0 {
		maxTokens = g.streamMaxTokens
	}
	eng, err := g.resolve(modelName)
	if err != nil {
		generationsTotal.WithLabelValues("stream", "rejected").Inc()
		return emit(ErrorText(err))
	}

	if err := g.acquire(ctx); err != nil {
		generationsTotal.WithLabelValues("stream", "canceled").Inc()
		return nil
	}

	// The producer lives on sessionCtx: canceling it on every consumer exit
	// path guarantees the producer can never wedge on a full channel nobody
	// drains, which would leak its permit.
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.publisher.Publish(Event{Name: "stream_start", Model: modelName})
	frags := make(chan string, fragmentBuffer)
	go func() {
		defer g.release()
		defer close(frags)
		if err := eng.GenerateStream(sessionCtx, prompt, maxTokens, frags); err != nil && sessionCtx.Err() == nil {
			generationsTotal.WithLabelValues("stream", "error").Inc()
			g.log.Warn().Err(err).Str("model", modelName).Msg("stream generation failed")
			g.publisher.Publish(Event{Name: "stream_error", Model: modelName, Fields: map[string]any{"error": err.Error()}})
		}
	}()

	for {
		select {
		case frag, ok := <-frags:
			if !ok {
				generationsTotal.WithLabelValues("stream", "ok").Inc()
				g.publisher.Publish(Event{Name: "stream_end", Model: modelName})
				return nil
			}
			if err := emit(frag); err != nil {
				generationsTotal.WithLabelValues("stream", "aborted").Inc()
				return err
			}
		case <-ctx.Done():
			generationsTotal.WithLabelValues("stream", "canceled").Inc()
			g.publisher.Publish(Event{Name: "stream_end", Model: modelName, Fields: map[string]any{"canceled": true}})
			return nil
		}
	}
}
