package types

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Overall service health.
	// example: ok
	Status string `json:"status" example:"ok"`
}

// ModelInfo describes one registry entry as returned by GET /models.
type ModelInfo struct {
	// Unique model name.
	// example: llama-3b
	Name string `json:"name" example:"llama-3b"`
	// Lifecycle status: Unloaded, Loading, Loaded or Error.
	// example: Loaded
	Status string `json:"status" example:"Loaded"`
	// Engine kind the model is bound to.
	// example: dummy
	EngineKind string `json:"engine_kind" example:"dummy"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// LoadModelRequest is the payload for POST /load.
type LoadModelRequest struct {
	// Name of the registry entry to load.
	// example: llama-3b
	ModelName string `json:"model_name" example:"llama-3b"`
}

// LoadModelResponse reports the outcome of a load attempt. Failures are
// expressed through Status plus Message, not a transport error.
type LoadModelResponse struct {
	// Name echoed back from the request.
	// example: llama-3b
	ModelName string `json:"model_name" example:"llama-3b"`
	// Resulting lifecycle status.
	// example: Loaded
	Status string `json:"status" example:"Loaded"`
	// Human-readable outcome.
	// example: model loaded (dummy engine)
	Message string `json:"message" example:"model loaded (dummy engine)"`
}

// InferRequest is the payload for POST /infer.
type InferRequest struct {
	// Target model name.
	// example: llama-3b
	ModelName string `json:"model_name" example:"llama-3b"`
	// Prompt text to generate a completion for.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Maximum number of new tokens; server defaults apply when omitted.
	// example: 64
	MaxTokens int `json:"max_tokens,omitempty" example:"64"`
}

// InferResponse is the synchronous generation result. Output may carry a
// human-readable error description instead of generated text.
type InferResponse struct {
	// Name echoed back from the request.
	// example: llama-3b
	ModelName string `json:"model_name" example:"llama-3b"`
	// Generated text, or an error message rendered as content.
	// example: [llama-3b DUMMY] HELLO
	Output string `json:"output" example:"[llama-3b DUMMY] HELLO"`
}

// ErrorResponse is a consistent JSON error payload for malformed requests.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
