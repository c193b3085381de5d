package providers

import (
	"fmt"
	"sync"
)

// Registry manages the registration and retrieval of providers. It
// provides thread-safe access to provider constructors and supports
// dynamic provider registration.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates a registry with all known providers registered.
func NewRegistry() *Registry {
	r := &Registry{
		constructors: make(map[string]Constructor),
	}
	for name, constructor := range knownProviders() {
		r.constructors[name] = constructor
	}
	return r
}

func knownProviders() map[string]Constructor {
	return map[string]Constructor{
		"anthropic": NewAnthropicProvider,
		"openai":    NewOpenAIProvider,
		"deepseek":  NewDeepSeekProvider,
		"gemini":    NewGeminiProvider,
	}
}

// Register adds a new provider constructor to the registry.
func (r *Registry) Register(name string, constructor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = constructor
}

// Get creates a provider instance by name using the registered constructor.
func (r *Registry) Get(name, apiKey, model string) (Provider, error) {
	r.mu.RLock()
	constructor, exists := r.constructors[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return constructor(apiKey, model), nil
}
