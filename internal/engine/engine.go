// Package engine defines the generation capability consumed by the gateway
// and its concrete implementations:
//
//   - dummy.go: deterministic reference engine (string transform + delays),
//     used for tests and as a fallback target.
//   - llama.go: llama.cpp-backed engine via go-llama.cpp. Enabled with
//     `-tags=llama`; a no-CGO stub (llama_stub.go) keeps default builds and
//     CI CGO-free by failing construction instead of mocking inference.
//
// Engines are constructed once per successful model load and shared across
// requests; implementations must be safe for concurrent use.
package engine

import (
	"context"
	"fmt"
	"time"

	"inferd/internal/registry"
)

// Engine provides synchronous and streaming text generation for one model.
type Engine interface {
	// Generate returns the full completion for prompt, bounded by maxTokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	// GenerateStream emits incremental fragments on out. It returns when the
	// generation finishes, fails, or ctx is canceled; it never closes out.
	GenerateStream(ctx context.Context, prompt string, maxTokens int, out chan<- string) error
}

// Options carries construction-time tunables for concrete engines.
type Options struct {
	// DummyDelay is the simulated work delay of the reference engine.
	// Zero means the package default.
	DummyDelay time.Duration
	// LlamaCtx is the llama.cpp context size.
	LlamaCtx int
	// LlamaThreads is the llama.cpp thread count.
	LlamaThreads int
}

// New constructs the concrete engine selected by kind. Construction is
// fallible; callers feed failures into the model status state machine.
func New(kind registry.EngineKind, meta registry.ModelMetadata, opts Options) (Engine, error) {
	switch kind {
	case registry.KindDummy:
		return NewDummy(meta.Name, opts.DummyDelay), nil
	case registry.KindLlama:
		return newLlama(meta, opts)
	default:
		return nil, fmt.Errorf("unknown engine kind %q for model %q", kind, meta.Name)
	}
}

// trySend delivers frag on out unless ctx is done first. It reports whether
// the fragment was accepted; false means the session is gone and the caller
// should stop generating.
func trySend(ctx context.Context, out chan<- string, frag string) bool {
	select {
	case out <- frag:
		return true
	case <-ctx.Done():
		return false
	}
}
