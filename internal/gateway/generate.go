package gateway

import (
	"context"
	"time"

	"inferd/internal/engine"
	"inferd/internal/registry"
)

// resolve runs the validation sequence shared by both session kinds, each
// step short-circuiting: model exists, status is Loaded, engine-table entry
// present. The two table reads are independent atomic lookups; interleaving
// with concurrent loads is tolerated.
func (g *Gateway) resolve(name string) (engine.Engine, error) {
	meta, ok := g.reg.Get(name)
	if !ok {
		return nil, ErrModelNotFound(name)
	}
	if meta.Status != registry.StatusLoaded {
		return nil, modelNotLoadedError{name: name, status: meta.Status}
	}
	eng := g.getEngine(name)
	if eng == nil {
		return nil, engineMissingError{name: name}
	}
	return eng, nil
}

// Generate runs one synchronous generation session. Validation and engine
// failures come back as taxonomy errors (render with ErrorText); the permit
// is held only for the engine call and released on every exit path.
func (g *Gateway) Generate(ctx context.Context, modelName, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = g.syncMaxTokens
	}
	eng, err := g.resolve(modelName)
	if err != nil {
		generationsTotal.WithLabelValues("sync", "rejected").Inc()
		return "", err
	}

	if err := g.acquire(ctx); err != nil {
		generationsTotal.WithLabelValues("sync", "canceled").Inc()
		return "", err
	}
	defer g.release()

	start := time.Now()
	g.publisher.Publish(Event{Name: "generate_start", Model: modelName})
	out, err := eng.Generate(ctx, prompt, maxTokens)
	if err != nil {
		generationsTotal.WithLabelValues("sync", "error").Inc()
		g.log.Warn().Err(err).Str("model", modelName).Msg("generate failed")
		g.publisher.Publish(Event{Name: "generate_end", Model: modelName, Fields: map[string]any{"error": err.Error()}})
		return "", engineFailureError{err: err}
	}
	generationsTotal.WithLabelValues("sync", "ok").Inc()
	g.log.Debug().Str("model", modelName).Dur("dur", time.Since(start)).Msg("generate done")
	g.publisher.Publish(Event{Name: "generate_end", Model: modelName})
	return out, nil
}
