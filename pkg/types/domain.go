package types

// ModelSeed describes one model entry in a registry manifest file.
type ModelSeed struct {
	// Unique model name used as the registry key.
	// example: llama-3b
	Name string `json:"name" yaml:"name" example:"llama-3b"`
	// Path to the model weights on disk.
	// example: ./models/llama-3b
	Path string `json:"path" yaml:"path" example:"./models/llama-3b"`
	// Quantization level or variant string.
	// example: q4_k_m
	Quant string `json:"quant" yaml:"quant" example:"q4_k_m"`
	// Engine kind: dummy or llama.
	// example: dummy
	EngineKind string `json:"engine_kind" yaml:"engine_kind" example:"dummy"`
}
