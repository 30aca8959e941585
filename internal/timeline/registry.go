package timeline

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Factory creates a new instance of a source from its configuration.
type Factory func(config any) (Source, error)

// SourceInfo contains metadata about a source.
type SourceInfo struct {
	Name        string
	Description string
	Factory     Factory
}

// Registry manages registered timeline sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*SourceInfo
}

// NewRegistry creates a new source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]*SourceInfo),
	}
}

// Register adds a source to the registry.
func (r *Registry) Register(name string, info *SourceInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("source %s is already registered", name)
	}

	r.sources[name] = info
	return nil
}

// Get retrieves a source by name.
func (r *Registry) Get(name string) (*SourceInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.sources[name]
	if !exists {
		return nil, fmt.Errorf("source %s not found", name)
	}

	return info, nil
}

// List returns all registered source names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Create creates a new instance of the named source.
func (r *Registry) Create(name string, config any) (Source, error) {
	info, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return info.Factory(config)
}

// DefaultRegistry holds the sources registered by their packages' init functions
var DefaultRegistry = NewRegistry()

// Register registers a source with the default registry.
func Register(name string, info *SourceInfo) {
	if err := DefaultRegistry.Register(name, info); err != nil {
		slog.Warn("Failed to register source", "source", name, "error", err)
	} else {
		slog.Debug("Registered source", "source", name, "description", info.Description)
	}
}

// New creates a source from the default registry.
func New(name string, config any) (Source, error) {
	return DefaultRegistry.Create(name, config)
}

// Names lists the sources in the default registry.
func Names() []string {
	return DefaultRegistry.List()
}
