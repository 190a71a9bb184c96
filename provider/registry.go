package provider

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps backend names to factories and keeps the instances built
// from them. It is safe for concurrent use.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry returns an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: map[string]Factory[T]{},
		instances: map[string]T{},
	}
}

// RegisterFactory adds or replaces the factory for name.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create builds a fresh instance from the factory for name. The result is
// not cached.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider %q not registered (have %v)", name, r.List())
	}
	return factory(cfg)
}

// Get returns the cached instance for name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set caches instance under name, replacing any earlier one.
func (r *Registry[T]) Set(name string, instance T) {
	r.mu.Lock()
	r.instances[name] = instance
	r.mu.Unlock()
}

// Resolve returns the cached instance for name, building it on first use.
// Concurrent first calls may each run the factory; the first to finish
// wins and the others get its instance.
func (r *Registry[T]) Resolve(name string, cfg map[string]any) (T, error) {
	if inst, ok := r.Get(name); ok {
		return inst, nil
	}
	inst, err := r.Create(name, cfg)
	if err != nil {
		return inst, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.instances[name]; ok {
		return cached, nil
	}
	r.instances[name] = inst
	return inst, nil
}

// List returns the registered factory names in order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
