package gateway

import (
	"context"
	"sync"
	"time"

	"inferd/internal/engine"
	"inferd/internal/registry"
)

const testDelay = time.Microsecond

// testSeeds returns the default two-model registry used across tests.
func testSeeds() []registry.ModelMetadata {
	return []registry.ModelMetadata{
		{Name: "llama-3b", Path: "./models/llama-3b", Quant: "q4_k_m", EngineKind: registry.KindDummy},
		{Name: "mistral-7b", Path: "./models/mistral-7b", Quant: "q4_k_m", EngineKind: registry.KindLlama},
	}
}

// stubEngine records invocations and returns canned results.
type stubEngine struct {
	mu     sync.Mutex
	calls  int
	output string
	err    error
	frags  []string
}

func (s *stubEngine) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubEngine) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.output, s.err
}

func (s *stubEngine) GenerateStream(ctx context.Context, prompt string, maxTokens int, out chan<- string) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	for _, f := range s.frags {
		select {
		case out <- f:
		case <-ctx.Done():
			return nil
		}
	}
	return s.err
}

// gateEngine blocks inside the engine call until released, so tests can
// observe admission behavior deterministically.
type gateEngine struct {
	entered chan struct{}
	release chan struct{}
}

func newGateEngine() *gateEngine {
	return &gateEngine{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (e *gateEngine) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	e.entered <- struct{}{}
	select {
	case <-e.release:
		return "ok", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *gateEngine) GenerateStream(ctx context.Context, prompt string, maxTokens int, out chan<- string) error {
	e.entered <- struct{}{}
	select {
	case <-e.release:
	case <-ctx.Done():
		return nil
	}
	select {
	case out <- "frag":
	case <-ctx.Done():
	}
	return nil
}

// fixedBuilder returns the same engine for every construction and counts
// how many times it ran.
type fixedBuilder struct {
	mu    sync.Mutex
	built int
	eng   engine.Engine
	err   error
}

func (b *fixedBuilder) builder() EngineBuilder {
	return func(kind registry.EngineKind, meta registry.ModelMetadata, opts engine.Options) (engine.Engine, error) {
		b.mu.Lock()
		b.built++
		b.mu.Unlock()
		if b.err != nil {
			return nil, b.err
		}
		return b.eng, nil
	}
}

func (b *fixedBuilder) builtCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.built
}

// newTestGateway wires a gateway over the default seeds with a tiny dummy
// delay; cfg mutators adjust the rest.
func newTestGateway(mut func(*GatewayConfig)) (*Gateway, *registry.Registry) {
	reg := registry.New(testSeeds())
	cfg := GatewayConfig{
		Registry: reg,
		Engine:   engine.Options{DummyDelay: testDelay},
	}
	if mut != nil {
		mut(&cfg)
	}
	return NewWithConfig(cfg), reg
}
