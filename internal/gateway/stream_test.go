package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// collectStream runs GenerateStream and returns the emitted fragments.
func collectStream(t *testing.T, g *Gateway, model, prompt string) []string {
	t.Helper()
	var frags []string
	err := g.GenerateStream(context.Background(), model, prompt, 0, func(f string) error {
		frags = append(frags, f)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	return frags
}

func TestStreamScenario(t *testing.T) {
	g, _ := newTestGateway(nil)
	if _, err := g.LoadModel("llama-3b"); err != nil {
		t.Fatalf("load: %v", err)
	}
	frags := collectStream(t, g, "llama-3b", "a b")
	want := []string{"[model=llama-3b]", "[LLAMA-3B", "DUMMY]", "A", "B"}
	if len(frags) != len(want) {
		t.Fatalf("fragments %v, want %v", frags, want)
	}
	for i := range want {
		if frags[i] != want[i] {
			t.Fatalf("fragment %d: want %q got %q", i, want[i], frags[i])
		}
	}
}

func TestStreamValidationEmitsSingleErrorFragment(t *testing.T) {
	g, _ := newTestGateway(nil)
	frags := collectStream(t, g, "ghost", "hi")
	if len(frags) != 1 {
		t.Fatalf("expected exactly one error fragment, got %v", frags)
	}
	if frags[0] != "Error: model `ghost` not found" {
		t.Fatalf("unexpected fragment: %q", frags[0])
	}
}

func TestStreamNotLoadedFragment(t *testing.T) {
	g, _ := newTestGateway(nil)
	frags := collectStream(t, g, "llama-3b", "hi")
	if len(frags) != 1 {
		t.Fatalf("expected exactly one error fragment, got %v", frags)
	}
	if frags[0] != "Error: model `llama-3b` is not loaded (status = Unloaded)" {
		t.Fatalf("unexpected fragment: %q", frags[0])
	}
}

func TestStreamCancellationStopsForwarding(t *testing.T) {
	// Slow the dummy engine down so cancellation lands mid-stream.
	g, _ := newTestGateway(func(cfg *GatewayConfig) { cfg.Engine.DummyDelay = 20 * time.Millisecond })
	if _, err := g.LoadModel("llama-3b"); err != nil {
		t.Fatalf("load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	delivered := 0
	done := make(chan error, 1)
	go func() {
		done <- g.GenerateStream(ctx, "llama-3b", "one two three four five six seven eight", 0, func(string) error {
			mu.Lock()
			delivered++
			n := delivered
			mu.Unlock()
			if n == 2 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stream returned error on cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("stream did not stop after cancel")
	}
	mu.Lock()
	after := delivered
	mu.Unlock()
	if after != 2 {
		t.Fatalf("no fragments may be forwarded after cancel, delivered=%d", after)
	}
	waitPermitFree(t, g)
}

func TestStreamEmitErrorReleasesPermit(t *testing.T) {
	g, _ := newTestGateway(func(cfg *GatewayConfig) { cfg.MaxConcurrentInfer = 1 })
	if _, err := g.LoadModel("llama-3b"); err != nil {
		t.Fatalf("load: %v", err)
	}

	sentinel := errors.New("client gone")
	err := g.GenerateStream(context.Background(), "llama-3b", "a b c d", 0, func(string) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected emit error back, got %v", err)
	}

	// With the 1-slot gate, further generation succeeding proves the aborted
	// session's permit was released.
	waitPermitFree(t, g)
	out, err := g.Generate(context.Background(), "llama-3b", "hello", 0)
	if err != nil {
		t.Fatalf("generate after abort: %v", err)
	}
	if out == "" {
		t.Fatalf("expected output")
	}
}

// waitPermitFree blocks until the gate has a free slot or the test deadline
// is hit. Needed because the producer releases its permit asynchronously.
func waitPermitFree(t *testing.T, g *Gateway) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		err := g.sem.Acquire(ctx, 1)
		cancel()
		if err == nil {
			g.sem.Release(1)
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("permit never released")
		}
	}
}

func TestStreamEngineErrorEndsStreamSilently(t *testing.T) {
	b := &fixedBuilder{eng: &stubEngine{frags: []string{"x"}, err: errors.New("decode failed")}}
	g, _ := newTestGateway(func(cfg *GatewayConfig) { cfg.NewEngine = b.builder() })
	if _, err := g.LoadModel("llama-3b"); err != nil {
		t.Fatalf("load: %v", err)
	}
	frags := collectStream(t, g, "llama-3b", "hi")
	// mid-stream engine failures close the stream after delivered fragments,
	// matching the source behavior of dropping the producer result
	if len(frags) != 1 || frags[0] != "x" {
		t.Fatalf("unexpected fragments: %v", frags)
	}
}
