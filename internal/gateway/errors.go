package gateway

import (
	"fmt"

	"inferd/internal/registry"
)

// modelNotFoundError signals a name absent from the registry.
type modelNotFoundError struct{ name string }

func (e modelNotFoundError) Error() string { return fmt.Sprintf("model `%s` not found", e.name) }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(name string) error { return modelNotFoundError{name: name} }

// IsModelNotFound reports whether err indicates a missing model name.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// modelNotLoadedError signals a known model whose status is not Loaded.
type modelNotLoadedError struct {
	name   string
	status registry.ModelStatus
}

func (e modelNotLoadedError) Error() string {
	return fmt.Sprintf("model `%s` is not loaded (status = %s)", e.name, e.status)
}

// IsModelNotLoaded reports whether err indicates a model that is present but
// not in the Loaded status.
func IsModelNotLoaded(err error) bool {
	_, ok := err.(modelNotLoadedError)
	return ok
}

// engineMissingError signals a Loaded model with no engine-table entry, an
// internal registry/engine-table consistency violation.
type engineMissingError struct{ name string }

func (e engineMissingError) Error() string {
	return fmt.Sprintf("no engine instance for model `%s`", e.name)
}

// IsEngineMissing reports whether err indicates a registry/engine-table desync.
func IsEngineMissing(err error) bool {
	_, ok := err.(engineMissingError)
	return ok
}

// engineFailureError wraps an error returned by the engine call itself.
type engineFailureError struct{ err error }

func (e engineFailureError) Error() string { return e.err.Error() }
func (e engineFailureError) Unwrap() error { return e.err }

// IsEngineFailure reports whether err came from the engine call.
func IsEngineFailure(err error) bool {
	_, ok := err.(engineFailureError)
	return ok
}

// ErrorText renders a session error as the human-readable string embedded in
// an otherwise well-formed response payload. Inference-time failures never
// surface as transport errors.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	if IsEngineFailure(err) {
		return fmt.Sprintf("Error during inference: %v", err)
	}
	return "Error: " + err.Error()
}
