package gateway

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"inferd/internal/engine"
	"inferd/internal/registry"
)

// Gateway owns the model registry view, the engine table, and the admission
// gate. The registry and the engine table are guarded by independent
// reader-writer locks and are never locked simultaneously.
type Gateway struct {
	reg *registry.Registry

	mu      sync.RWMutex
	engines map[string]engine.Engine

	// loadMu guards loadLocks; each model name gets its own load lock so
	// concurrent loads of one model collapse into a single construction
	// without blocking loads of other models.
	loadMu    sync.Mutex
	loadLocks map[string]*sync.Mutex

	sem             *semaphore.Weighted
	maxConcurrent   int
	syncMaxTokens   int
	streamMaxTokens int

	engineOpts engine.Options
	newEngine  EngineBuilder

	log       zerolog.Logger
	publisher EventPublisher
}

// New constructs a Gateway over reg with the given admission cap, using
// package defaults for everything else.
func New(reg *registry.Registry, maxConcurrentInfer int) *Gateway {
	return NewWithConfig(GatewayConfig{
		Registry:           reg,
		MaxConcurrentInfer: maxConcurrentInfer,
	})
}

// ListModels returns a copy of all registry entries.
func (g *Gateway) ListModels() []registry.ModelMetadata {
	return g.reg.List()
}

// Ready reports whether at least one model is loaded and servable.
func (g *Gateway) Ready() bool {
	for _, meta := range g.reg.List() {
		if meta.Status == registry.StatusLoaded {
			return true
		}
	}
	return false
}

// MaxConcurrentInfer returns the configured admission cap.
func (g *Gateway) MaxConcurrentInfer() int { return g.maxConcurrent }

// loadLock returns the per-name load lock, creating it on first use. The
// registry key set is fixed at process start, so the map never grows beyond
// the registry size.
func (g *Gateway) loadLock(name string) *sync.Mutex {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()
	l, ok := g.loadLocks[name]
	if !ok {
		l = &sync.Mutex{}
		g.loadLocks[name] = l
	}
	return l
}

// getEngine returns the shared engine instance for name, nil when absent.
func (g *Gateway) getEngine(name string) engine.Engine {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.engines[name]
}
