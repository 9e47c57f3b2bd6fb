package interfaces

import "context"

// PresenceStore records per-user online flags
// ARCHITECTURAL DISCOVERY: Presence is a live signal, not a durable one -
// the store only answers "is this user online right now"; offline users learn
// current status by querying on their next connect, which is the client's
// responsibility. Implementations: process-local map (default) and Redis.
type PresenceStore interface {
	// SetOnline marks the user online
	SetOnline(ctx context.Context, userID string) error

	// SetOffline clears the user's online flag; no-op if already offline
	SetOffline(ctx context.Context, userID string) error

	// IsOnline reports the current flag
	IsOnline(ctx context.Context, userID string) (bool, error)
}
