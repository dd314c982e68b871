package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ModelConfig maps a logical model key to a concrete provider endpoint.
// APIKeyEnv names the environment variable holding the provider credential
// so keys never live in the registry file itself.
type ModelConfig struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Model     string `json:"model"`
	BaseURL   string `json:"base_url"`
	APIKeyEnv string `json:"api_key_env"`
}

// APIKey resolves the provider credential at call time.
func (m *ModelConfig) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

type ModelsFile struct {
	Models []ModelConfig `json:"models"`
}

// Registry is the process-wide model catalogue, loaded once at startup.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*ModelConfig
}

func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*ModelConfig)}
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models config: %w", err)
	}

	var file ModelsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse models config: %w", err)
	}

	reg := NewRegistry()
	for i := range file.Models {
		reg.Register(&file.Models[i])
	}
	return reg, nil
}

func (r *Registry) Register(cfg *ModelConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[cfg.Key] = cfg
}

func (r *Registry) Get(key string) *ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models[key]
}

func (r *Registry) Exists(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.models[key]
	return ok
}

func (r *Registry) All() []*ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ModelConfig, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	return out
}
