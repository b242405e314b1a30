package registry

import (
	"sync"
	"time"
)

// ModelStatus is the lifecycle status of a registry entry.
type ModelStatus string

const (
	StatusUnloaded ModelStatus = "Unloaded"
	StatusLoading  ModelStatus = "Loading"
	StatusLoaded   ModelStatus = "Loaded"
	StatusError    ModelStatus = "Error"
)

// EngineKind selects the concrete engine constructed at load time.
type EngineKind string

const (
	KindDummy EngineKind = "dummy"
	KindLlama EngineKind = "llama"
)

// ModelMetadata describes one named model and its lifecycle status.
// Records are mutated only through Registry.SetStatus; callers always
// receive value copies.
type ModelMetadata struct {
	Name        string
	Status      ModelStatus
	Path        string
	Quant       string
	EngineKind  EngineKind
	LastUpdated time.Time
}

// Registry is a thread-safe map from model name to metadata. Keys are fixed
// at construction; there is no dynamic registration.
type Registry struct {
	mu     sync.RWMutex
	models map[string]ModelMetadata
}

// New builds a registry from the given seeds. All entries start Unloaded.
func New(seeds []ModelMetadata) *Registry {
	m := make(map[string]ModelMetadata, len(seeds))
	for _, s := range seeds {
		s.Status = StatusUnloaded
		s.LastUpdated = time.Time{}
		m[s.Name] = s
	}
	return &Registry{models: m}
}

// Get returns a copy of the metadata for name, ok=false when unknown.
func (r *Registry) Get(name string) (ModelMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.models[name]
	return meta, ok
}

// List returns copies of all entries in unspecified order.
func (r *Registry) List() []ModelMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModelMetadata, 0, len(r.models))
	for _, meta := range r.models {
		out = append(out, meta)
	}
	return out
}

// SetStatus transitions the entry's status and stamps LastUpdated, returning
// the updated copy. ok=false when name is unknown; nothing is created.
func (r *Registry) SetStatus(name string, status ModelStatus) (ModelMetadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meta, ok := r.models[name]
	if !ok {
		return ModelMetadata{}, false
	}
	meta.Status = status
	meta.LastUpdated = time.Now()
	r.models[name] = meta
	return meta, true
}
