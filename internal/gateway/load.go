package gateway

import (
	"inferd/internal/registry"
)

// LoadModel transitions a registry entry to Loaded, constructing the engine
// selected by the model's engine-kind tag and inserting it into the engine
// table. Loading an already-Loaded model is a no-op that returns the current
// metadata without reconstructing the engine. Any construction failure
// transitions the entry to Error with a descriptive message; status never
// sticks at Loading.
func (g *Gateway) LoadModel(name string) (registry.ModelMetadata, error) {
	meta, ok := g.reg.Get(name)
	if !ok {
		g.publisher.Publish(Event{Name: "load_not_found", Model: name})
		return registry.ModelMetadata{}, ErrModelNotFound(name)
	}
	if meta.Status == registry.StatusLoaded {
		return meta, nil
	}

	lock := g.loadLock(name)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the per-name lock: a concurrent load may have finished.
	meta, ok = g.reg.Get(name)
	if !ok {
		return registry.ModelMetadata{}, ErrModelNotFound(name)
	}
	if meta.Status == registry.StatusLoaded {
		g.publisher.Publish(Event{Name: "load_noop", Model: name})
		return meta, nil
	}

	g.log.Info().Str("model", name).Str("engine_kind", string(meta.EngineKind)).Msg("load start")
	g.publisher.Publish(Event{Name: "load_start", Model: name})
	g.reg.SetStatus(name, registry.StatusLoading)

	eng, err := g.newEngine(meta.EngineKind, meta, g.engineOpts)
	if err != nil {
		g.reg.SetStatus(name, registry.StatusError)
		loadsTotal.WithLabelValues("error").Inc()
		g.log.Error().Err(err).Str("model", name).Msg("load failed")
		g.publisher.Publish(Event{Name: "load_error", Model: name, Fields: map[string]any{"error": err.Error()}})
		return registry.ModelMetadata{}, engineFailureError{err: err}
	}

	// Insert before the Loaded transition so a reader never observes Loaded
	// without an engine-table entry.
	g.mu.Lock()
	g.engines[name] = eng
	g.mu.Unlock()

	meta, _ = g.reg.SetStatus(name, registry.StatusLoaded)
	loadsTotal.WithLabelValues("ok").Inc()
	g.log.Info().Str("model", name).Msg("load ready")
	g.publisher.Publish(Event{Name: "load_ready", Model: name})
	return meta, nil
}
