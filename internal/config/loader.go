package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// CORS holds opt-in cross-origin settings for the HTTP API.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr               string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsFile         string `json:"models_file" yaml:"models_file" toml:"models_file"`
	MaxConcurrentInfer int    `json:"max_concurrent_infer" yaml:"max_concurrent_infer" toml:"max_concurrent_infer"`
	SyncMaxTokens      int    `json:"sync_max_tokens" yaml:"sync_max_tokens" toml:"sync_max_tokens"`
	StreamMaxTokens    int    `json:"stream_max_tokens" yaml:"stream_max_tokens" toml:"stream_max_tokens"`
	DummyDelayMS       int    `json:"dummy_delay_ms" yaml:"dummy_delay_ms" toml:"dummy_delay_ms"`
	LlamaCtx           int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads       int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	LogLevel           string `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORS               CORS   `json:"cors" yaml:"cors" toml:"cors"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
