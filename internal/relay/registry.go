package relay

import (
	"sync"

	"github.com/framecast/framecast/internal/domain"
)

// Registry is the concurrency-safe set of registered viewer connections.
// It owns nothing about connection lifecycle: it only tracks membership.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]domain.Connection
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]domain.Connection),
	}
}

// Register adds a connection to the set. Registering the same connection
// ID twice overwrites the previous entry.
func (r *Registry) Register(conn domain.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
}

// Deregister removes a connection from the set. It is a no-op if the
// connection is not registered, so calling it twice is safe.
func (r *Registry) Deregister(conn domain.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn.ID())
}

// Snapshot returns a point-in-time copy of the registered connections.
// Callers iterate the copy without holding the registry lock, so slow
// fan-out never blocks viewers joining or leaving.
func (r *Registry) Snapshot() []domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]domain.Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
