package interfaces

// Connection represents one live bidirectional client connection
// ARCHITECTURAL DISCOVERY: Pure abstraction without implementation details
// ensures clean boundaries between WebSocket infrastructure and fanout logic,
// and lets tests register fake handles in the registry
type Connection interface {
	// WriteJSON sends a JSON message to the client (thread-safe)
	WriteJSON(v interface{}) error

	// Close closes the connection and cleans up resources
	Close() error

	// GetUserID returns the authenticated user this handle belongs to
	GetUserID() string

	// IsAuthenticated reports whether credentials have been bound
	IsAuthenticated() bool
}
