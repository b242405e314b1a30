//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"inferd/internal/registry"
)

// Sampling defaults mirrored from the reference decoding setup; the fixed
// seed keeps generations reproducible for determinism testing.
const (
	llamaTemperature float32 = 0.8
	llamaTopP        float32 = 0.9
	llamaSeed                = 42
)

// llamaEngine wraps an in-process llama.cpp model. Decode mutates internal
// model state sequentially, so mu serializes generations per instance; the
// process-wide admission gate limits concurrency across engines, not within
// one.
type llamaEngine struct {
	name    string
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

func newLlama(meta registry.ModelMetadata, opts Options) (Engine, error) {
	if strings.TrimSpace(meta.Path) == "" {
		return nil, errors.New("model path is empty")
	}
	ctxSize := opts.LlamaCtx
	if ctxSize <= 0 {
		ctxSize = 2048
	}
	threads := opts.LlamaThreads
	if threads <= 0 {
		threads = 4
	}
	m, err := llama.New(meta.Path, llama.SetContext(ctxSize))
	if err != nil {
		return nil, err
	}
	return &llamaEngine{name: meta.Name, model: m, threads: threads}, nil
}

func (e *llamaEngine) predictOptions(maxTokens int) []llama.PredictOption {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return []llama.PredictOption{
		llama.SetTokens(maxTokens),
		llama.SetThreads(e.threads),
		llama.SetTemperature(llamaTemperature),
		llama.SetTopP(llamaTopP),
		llama.SetSeed(llamaSeed),
	}
}

func (e *llamaEngine) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Returning false from the callback stops decoding; used here only to
	// honor cancellation since the full text is returned by Predict.
	e.model.SetTokenCallback(func(string) bool {
		return ctx.Err() == nil
	})
	text, err := e.model.Predict(prompt, e.predictOptions(maxTokens)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (e *llamaEngine) GenerateStream(ctx context.Context, prompt string, maxTokens int, out chan<- string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model.SetTokenCallback(func(tok string) bool {
		return trySend(ctx, out, tok)
	})
	_, err := e.model.Predict(prompt, e.predictOptions(maxTokens)...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
