package agent

import (
	"sync"

	"github.com/vaibhavi8/autoplay/core"
)

// Registry is a thread-safe lookup table of decision backends by id. The
// dispatch policy consults it on every decision, so registrations and
// replacements take effect on the next decision point.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]core.AgentClient
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]core.AgentClient)}
}

// Register makes a client available under the given id, replacing any
// previous client with the same id.
func (r *Registry) Register(id string, c core.AgentClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[id] = c
}

// Get retrieves a registered client by id.
func (r *Registry) Get(id string) (core.AgentClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// IDs returns the registered ids in unspecified order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}
