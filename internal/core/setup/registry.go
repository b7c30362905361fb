package setup

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/chickadee/internal/core/scene"
)

// Factory creates a component from its scene file parameters.
type Factory func(params Params) (scene.Component, error)

// Registry maps component type names used in scene files to factories.
type Registry interface {
	Register(name string, factory Factory)
	New(name string, params Params) (scene.Component, error)
	Names() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return &registry{factories: make(map[string]Factory)}
}

func (r *registry) Register(name string, factory Factory) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

func (r *registry) New(name string, params Params) (scene.Component, error) {
	r.mu.RLock()
	f := r.factories[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	c, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
