package indicator

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a fresh calculator instance. Each symbol gets its own
// instances, so factories must not share state between calls.
type Factory func() (Calculator, error)

// Registry maps indicator names to calculator factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new indicator registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a factory under a name
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("indicator name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("indicator %q already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Create builds a new calculator instance for the named indicator
func (r *Registry) Create(name string) (Calculator, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("indicator %q not found", name)
	}
	return factory()
}

// List returns the registered indicator names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a factory from the registry
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return fmt.Errorf("indicator %q not found", name)
	}
	delete(r.factories, name)
	return nil
}

// Clear removes all factories from the registry
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[string]Factory)
}
