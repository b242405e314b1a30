// Package gateway coordinates model lifecycle, engine dispatch, and
// admission-controlled generation. It is structured into small files by
// concern:
//
//   - gateway.go: core Gateway type, constructor, simple getters.
//   - config.go: GatewayConfig and package defaults; NewWithConfig applies defaults.
//   - errors.go: error taxonomy and helpers (IsModelNotFound, IsModelNotLoaded, ...).
//   - load.go: LoadModel lifecycle transitions and engine construction.
//   - admission.go: the process-wide bounded admission gate.
//   - generate.go: synchronous generation sessions.
//   - stream.go: streaming sessions (producer/consumer over a bounded channel).
//   - events.go: lifecycle event publishing (no-op by default).
//   - metrics.go: Prometheus instrumentation.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, ListModels, LoadModel, Generate,
// GenerateStream, Ready). Internal types are subject to change.
package gateway
