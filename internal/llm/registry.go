package llm

import (
	"fmt"
	"sync"
)

// BackendInfo describes a registered backend for display.
type BackendInfo struct {
	Name      Backend  `json:"name"`
	Label     string   `json:"label"`
	Models    []string `json:"models"`
	Available bool     `json:"available"`
	Default   bool     `json:"default"`
}

type entry struct {
	client    Client
	models    []string
	available bool
}

// Registry maps backends to their clients.
type Registry struct {
	mu      sync.RWMutex
	entries map[Backend]entry
	order   []Backend
	def     Backend
}

// NewRegistry creates an empty registry with the given default backend.
func NewRegistry(defaultBackend Backend) *Registry {
	return &Registry{entries: make(map[Backend]entry), def: defaultBackend}
}

// Register adds or replaces the client for a backend. available is false
// for backends registered with an Unavailable client.
func (r *Registry) Register(b Backend, c Client, models []string, available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[b]; !exists {
		r.order = append(r.order, b)
	}
	m := make([]string, len(models))
	copy(m, models)
	r.entries[b] = entry{client: c, models: m, available: available}
}

// Client returns the client registered for b.
func (r *Registry) Client(b Backend) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[b]
	if !ok || e.client == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, b)
	}
	return e.client, nil
}

// Available reports whether b is registered with working credentials.
func (r *Registry) Available(b Backend) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[b].available
}

// Default returns the preselected backend.
func (r *Registry) Default() Backend {
	return r.def
}

// Backends describes all registered backends in registration order.
func (r *Registry) Backends() []BackendInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BackendInfo, 0, len(r.order))
	for _, b := range r.order {
		e := r.entries[b]
		models := make([]string, len(e.models))
		copy(models, e.models)
		out = append(out, BackendInfo{
			Name:      b,
			Label:     b.Label(),
			Models:    models,
			Available: e.available,
			Default:   b == r.def,
		})
	}
	return out
}
