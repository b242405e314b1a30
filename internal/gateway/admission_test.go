package gateway

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestAdmissionCapBlocksExcessWork drives a 1-slot gate with two concurrent
// generations against a gated engine: the second caller must observably
// suspend until the first releases its permit.
func TestAdmissionCapBlocksExcessWork(t *testing.T) {
	eng := newGateEngine()
	b := &fixedBuilder{eng: eng}
	g, _ := newTestGateway(func(cfg *GatewayConfig) {
		cfg.MaxConcurrentInfer = 1
		cfg.NewEngine = b.builder()
	})
	if _, err := g.LoadModel("llama-3b"); err != nil {
		t.Fatalf("load: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Generate(context.Background(), "llama-3b", "hi", 0); err != nil {
				t.Errorf("generate: %v", err)
			}
		}()
	}

	// Exactly one caller reaches the engine.
	select {
	case <-eng.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("no caller reached the engine")
	}
	select {
	case <-eng.entered:
		t.Fatalf("second caller ran engine logic while the gate was full")
	case <-time.After(50 * time.Millisecond):
	}

	// Releasing the first lets the waiter proceed.
	eng.release <- struct{}{}
	select {
	case <-eng.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("waiter never admitted after slot freed")
	}
	eng.release <- struct{}{}
	wg.Wait()
}

// TestAdmissionGateSharedAcrossModes verifies sync and streaming sessions
// draw from the same process-wide gate.
func TestAdmissionGateSharedAcrossModes(t *testing.T) {
	eng := newGateEngine()
	b := &fixedBuilder{eng: eng}
	g, _ := newTestGateway(func(cfg *GatewayConfig) {
		cfg.MaxConcurrentInfer = 1
		cfg.NewEngine = b.builder()
	})
	if _, err := g.LoadModel("llama-3b"); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Occupy the single slot with a sync generation.
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		_, _ = g.Generate(context.Background(), "llama-3b", "hi", 0)
	}()
	select {
	case <-eng.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("sync call never reached engine")
	}

	// A streaming session must now wait at admission, before any producer
	// work starts.
	streamDone := make(chan struct{})
	go func() {
		defer close(streamDone)
		_ = g.GenerateStream(context.Background(), "llama-3b", "hi", 0, func(string) error { return nil })
	}()
	select {
	case <-eng.entered:
		t.Fatalf("stream producer ran while the gate was full")
	case <-time.After(50 * time.Millisecond):
	}

	eng.release <- struct{}{}
	<-syncDone
	select {
	case <-eng.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("stream never admitted after slot freed")
	}
	eng.release <- struct{}{}
	select {
	case <-streamDone:
	case <-time.After(5 * time.Second):
		t.Fatalf("stream did not finish")
	}
}
