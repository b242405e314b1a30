package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"inferd/pkg/types"
)

// DefaultSeeds returns the built-in example registry used when no manifest
// is configured.
func DefaultSeeds() []ModelMetadata {
	return []ModelMetadata{
		{Name: "mistral-7b", Path: "./models/mistral-7b", Quant: "q4_k_m", EngineKind: KindLlama},
		{Name: "llama-3b", Path: "./models/llama-3b", Quant: "q4_k_m", EngineKind: KindDummy},
	}
}

// LoadFile reads a YAML model manifest and converts it into registry seeds.
// The manifest is a list of {name, path, quant, engine_kind} entries.
func LoadFile(path string) ([]ModelMetadata, error) {
	base, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(base)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var entries []types.ModelSeed
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	seeds := make([]ModelMetadata, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("manifest entry %d: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("manifest entry %d: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}
		kind := EngineKind(e.EngineKind)
		switch kind {
		case KindDummy, KindLlama:
		case "":
			kind = KindDummy
		default:
			return nil, fmt.Errorf("manifest entry %q: unknown engine_kind %q", name, e.EngineKind)
		}
		seeds = append(seeds, ModelMetadata{
			Name:       name,
			Path:       e.Path,
			Quant:      e.Quant,
			EngineKind: kind,
		})
	}
	return seeds, nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
