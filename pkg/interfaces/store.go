package interfaces

import (
	"context"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// Store handles all persistence operations
// ARCHITECTURAL DISCOVERY: Single interface for all durable operations enables
// consistent error handling and mock-based testing of the fanout engines.
// The fanout core treats the store as the source of truth: a recipient that
// misses the live push still sees the message on its next history fetch.
type Store interface {
	// User operations

	// CreateUser persists a new account. Email uniqueness is enforced here.
	CreateUser(ctx context.Context, user *types.User) error

	// GetUserByEmail retrieves an account for login
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserByID retrieves an account by id
	GetUserByID(ctx context.Context, userID string) (*types.User, error)

	// Message operations
	// FUNCTIONAL DISCOVERY: Message storage must complete before fanout -
	// persist (may block) happens-before lookup-and-emit (synchronous)

	// CreateMessage persists a message with its server-assigned id and timestamp
	CreateMessage(ctx context.Context, message *types.Message) error

	// GetMessage retrieves the raw persisted record
	GetMessage(ctx context.Context, messageID string) (*types.Message, error)

	// GetMessageData retrieves a message joined with sender/recipient display
	// fields needed for client rendering at fanout time
	GetMessageData(ctx context.Context, messageID string) (*types.MessageData, error)

	// DeleteMessage removes a message and returns the deleted record so the
	// caller can notify affected live parties. Absent id is ErrMessageNotFound.
	DeleteMessage(ctx context.Context, messageID string) (*types.Message, error)

	// GetMessagesBetween returns the direct-message history between two users
	// ordered by timestamp ascending (insertion order = display order)
	GetMessagesBetween(ctx context.Context, userA, userB string) ([]*types.MessageData, error)

	// Channel operations

	// CreateChannel persists a channel with its admin and member list
	CreateChannel(ctx context.Context, channel *types.Channel) error

	// GetChannel retrieves a channel with its full member list and admin.
	// Absent id is ErrChannelNotFound.
	GetChannel(ctx context.Context, channelID string) (*types.Channel, error)

	// AppendChannelMessage appends a message id to the channel's ordered list
	AppendChannelMessage(ctx context.Context, channelID, messageID string) error

	// GetUserChannels returns channels the user administers or belongs to,
	// most recently updated first
	GetUserChannels(ctx context.Context, userID string) ([]*types.Channel, error)

	// GetChannelMessages returns the channel's messages in list order,
	// joined with sender display fields
	GetChannelMessages(ctx context.Context, channelID string) ([]*types.MessageData, error)

	// Health and lifecycle operations

	// HealthCheck verifies connectivity and basic operations
	HealthCheck(ctx context.Context) error

	// Close closes the store and waits for pending writes
	Close() error
}
