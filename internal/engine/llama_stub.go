//go:build !llama

package engine

import (
	"errors"

	"inferd/internal/registry"
)

// Compiled when the 'llama' build tag is NOT set, keeping default builds and
// CI CGO-free. Construction fails fast so a load of a llama-kind model lands
// in status Error with a clear message instead of mocking inference.

func newLlama(registry.ModelMetadata, Options) (Engine, error) {
	return nil, errors.New("llama engine not built (missing 'llama' build tag)")
}
