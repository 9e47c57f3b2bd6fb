package websocket

import (
	"sync"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/interfaces"
)

// Registry is the process-wide mapping from authenticated user id to the live
// connection handle.
// ARCHITECTURAL DISCOVERY: Lifecycle-scoped object injected into every
// consumer instead of a module-level map - enables independent registries in tests.
// One active connection per user id; the registry is a presence map, not a
// multi-device fanout list.
type Registry struct {
	mu          sync.RWMutex // TECHNICAL DISCOVERY: RWMutex optimizes for read-heavy fanout lookups
	connections map[string]interfaces.Connection
}

// NewRegistry creates a new connection registry
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]interfaces.Connection),
	}
}

// Register unconditionally maps userID to conn - last-connect-wins.
// It never fails. The prior handle for the id, if any, is abandoned, not
// closed: the transport's own disconnect of the old handle is independent and
// its cleanup must not be able to remove the replacement (see UnregisterConnection).
func (r *Registry) Register(userID string, conn interfaces.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[userID] = conn
}

// Unregister removes the mapping if present; no-op if absent
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, userID)
}

// UnregisterConnection removes the entry whose handle is exactly conn.
// FUNCTIONAL DISCOVERY: Disconnect events only carry the handle; the
// same-instance check prevents a stale connection's cleanup from
// unregistering a newer connection that replaced it
func (r *Registry) UnregisterConnection(conn interfaces.Connection) {
	if conn == nil {
		return
	}

	userID := conn.GetUserID()
	r.mu.Lock()
	defer r.mu.Unlock()

	registered, exists := r.connections[userID]
	if !exists {
		return // Idempotent
	}
	if registered != conn {
		return // A different connection is now registered
	}
	delete(r.connections, userID)
}

// Lookup returns the current handle for a user with O(1) read access.
// Pure read - never blocks, never mutates.
func (r *Registry) Lookup(userID string) (interfaces.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.connections[userID]
	return conn, exists
}

// Connections returns a snapshot of all live handles for broadcast fanout
func (r *Registry) Connections() []interfaces.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]interfaces.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		conns = append(conns, conn)
	}
	return conns
}

// Stats returns registry statistics for monitoring
func (r *Registry) Stats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]int{
		"total_connections": len(r.connections),
	}
}
