package fanout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/interfaces"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// ChannelEngine delivers channel messages: persist, append to the channel's
// message list, then push to every currently-connected member of the channel's
// effective recipient set (members UNION admin).
type ChannelEngine struct {
	registry Registry
	store    interfaces.Store
	limiter  *RateLimiter
}

// NewChannelEngine creates a channel fanout engine
func NewChannelEngine(registry Registry, store interfaces.Store, limiter *RateLimiter) *ChannelEngine {
	return &ChannelEngine{
		registry: registry,
		store:    store,
		limiter:  limiter,
	}
}

// SendChannelMessage validates, persists, links and fans out one channel message.
// ARCHITECTURAL DISCOVERY: No cross-table transaction spans persist and append -
// a channel that vanishes between the two is a reported partial failure (the
// message exists but is orphaned from the channel list) and is not rolled back.
func (e *ChannelEngine) SendChannelMessage(ctx context.Context, channelID string, message *types.Message) (*types.MessageData, error) {
	if channelID == "" {
		return nil, ErrMissingChannel
	}
	// Recipient left unset: this is what distinguishes a channel message from
	// a direct message in storage
	message.RecipientID = nil
	message.ChannelID = &channelID
	if err := message.Validate(); err != nil {
		return nil, err
	}

	if !e.limiter.Allow(message.SenderID) {
		return nil, ErrRateLimitExceeded
	}

	// FUNCTIONAL DISCOVERY: Membership is checked before anything is persisted -
	// the socket path enforces the same gate as the HTTP history endpoint
	channel, err := e.store.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if _, ok := channel.RecipientSet()[message.SenderID]; !ok {
		return nil, ErrNotChannelMember
	}

	message.ID = uuid.New().String()
	message.Timestamp = time.Now().UTC()

	if err := e.store.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	if err := e.store.AppendChannelMessage(ctx, channelID, message.ID); err != nil {
		return nil, fmt.Errorf("failed to link message to channel: %w", err)
	}

	data, err := e.store.GetMessageData(ctx, message.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message data: %w", err)
	}
	data.ChannelID = &channelID

	// FUNCTIONAL DISCOVERY: The recipient set is a mathematical set of
	// members and admin, so a user appearing as both is pushed to exactly
	// once - including the sender's own echo
	for userID := range channel.RecipientSet() {
		conn, exists := e.registry.Lookup(userID)
		if !exists {
			continue
		}
		if err := conn.WriteJSON(&types.Event{Event: types.EventReceiveChannelMessage, Data: data}); err != nil {
			log.Printf("Failed to deliver channel message to %s: %v", userID, err)
		}
	}

	return data, nil
}
