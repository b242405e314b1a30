package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// defaultDummyDelay simulates a small amount of inference work.
const defaultDummyDelay = 50 * time.Millisecond

// Dummy is the deterministic reference engine. It only transforms strings
// and sleeps, so streamed fragments concatenated always reproduce the
// synchronous output for the same prompt.
type Dummy struct {
	name  string
	delay time.Duration
}

// NewDummy returns a reference engine for the named model. A non-positive
// delay selects the package default.
func NewDummy(name string, delay time.Duration) *Dummy {
	if delay <= 0 {
		delay = defaultDummyDelay
	}
	return &Dummy{name: name, delay: delay}
}

func (d *Dummy) output(prompt string) string {
	return fmt.Sprintf("[%s DUMMY] %s", d.name, strings.ToUpper(prompt))
}

func (d *Dummy) Generate(ctx context.Context, prompt string, _ int) (string, error) {
	select {
	case <-time.After(d.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return d.output(prompt), nil
}

// GenerateStream sends one marker fragment identifying the model, then the
// full output split on whitespace, one fragment per word with a fixed
// inter-fragment delay. It stops early and silently when the session is
// canceled mid-stream.
func (d *Dummy) GenerateStream(ctx context.Context, prompt string, _ int, out chan<- string) error {
	frags := append([]string{fmt.Sprintf("[model=%s]", d.name)}, strings.Fields(d.output(prompt))...)
	for _, frag := range frags {
		if !trySend(ctx, out, frag) {
			return nil
		}
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
