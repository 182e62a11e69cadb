package platform

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Registry holds the configured adapters, keyed by platform.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Platform]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Platform]Adapter)}
}

// Register adds an adapter. Registering a second adapter for the same
// platform is a configuration mistake and fails.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := a.Platform()
	if !p.Valid() {
		return errors.Newf("unknown platform %q", p)
	}
	if _, exists := r.adapters[p]; exists {
		return errors.Newf("adapter for %s already registered", p)
	}
	r.adapters[p] = a
	return nil
}

// Get returns the adapter for p, or nil when none is registered.
func (r *Registry) Get(p Platform) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[p]
}

// Extractor returns the adapter for p if it supports extraction.
func (r *Registry) Extractor(p Platform) (Extractor, bool) {
	e, ok := r.Get(p).(Extractor)
	return e, ok
}

// Publisher returns the adapter for p if it supports publishing.
func (r *Registry) Publisher(p Platform) (Publisher, bool) {
	pub, ok := r.Get(p).(Publisher)
	return pub, ok
}
