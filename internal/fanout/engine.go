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

// Registry is the connection lookup surface the fanout engines need
// ARCHITECTURAL DISCOVERY: Consumer-side interface avoids coupling the engines
// to the websocket package and lets tests wire a registry of fake handles
type Registry interface {
	Lookup(userID string) (interfaces.Connection, bool)
}

// Engine delivers direct messages: persist-then-fanout against the durable
// store, then best-effort push to the live recipient and sender echo.
// FUNCTIONAL DISCOVERY: The store is the source of truth - a recipient that
// misses the live push sees the message on its next history fetch, so a
// delivery miss is never an error.
type Engine struct {
	registry Registry
	store    interfaces.Store
	limiter  *RateLimiter
}

// NewEngine creates a direct-message fanout engine
func NewEngine(registry Registry, store interfaces.Store, limiter *RateLimiter) *Engine {
	return &Engine{
		registry: registry,
		store:    store,
		limiter:  limiter,
	}
}

// SendDirectMessage validates, persists and fans out one direct message.
// The returned MessageData is what the caller acknowledges back to the sender;
// an error return means nothing was delivered (and, for validation errors,
// nothing was persisted).
func (e *Engine) SendDirectMessage(ctx context.Context, message *types.Message) (*types.MessageData, error) {
	// Reject before persisting: exactly one payload field for the kind
	if message.RecipientID == nil || !types.IsValidUserID(*message.RecipientID) {
		return nil, ErrMissingRecipient
	}
	message.ChannelID = nil
	if err := message.Validate(); err != nil {
		return nil, err
	}

	if !e.limiter.Allow(message.SenderID) {
		return nil, ErrRateLimitExceeded
	}

	// ARCHITECTURAL DISCOVERY: Server controls message ids and timestamps -
	// client-provided values are ignored to keep insertion order authoritative
	message.ID = uuid.New().String()
	message.Timestamp = time.Now().UTC()

	// Persist first; persistence failure aborts before any fanout
	if err := e.store.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	// Re-fetch joined with sender/recipient display fields - the live push
	// needs display-ready data immediately
	data, err := e.store.GetMessageData(ctx, message.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message data: %w", err)
	}

	// FUNCTIONAL DISCOVERY: Zero, one or two deliveries - the sender receives
	// its own message back so multiple sender tabs stay in sync; when sender
	// and recipient are the same user the single handle gets exactly one copy
	e.emit(*message.RecipientID, types.EventReceiveMessage, data)
	if message.SenderID != *message.RecipientID {
		e.emit(message.SenderID, types.EventReceiveMessage, data)
	}

	return data, nil
}

// DeleteMessage removes a message and notifies the affected live parties.
// FUNCTIONAL DISCOVERY: Ownership is checked before any registry lookup -
// authorization happens upstream of fanout
func (e *Engine) DeleteMessage(ctx context.Context, requesterID, messageID string) error {
	message, err := e.store.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != requesterID {
		return ErrNotMessageOwner
	}

	deleted, err := e.store.DeleteMessage(ctx, messageID)
	if err != nil {
		return err
	}

	notice := &types.DeletionNotice{MessageID: messageID, ChannelID: deleted.ChannelID}

	if deleted.ChannelID != nil {
		// Channel message: notify every live channel member
		channel, err := e.store.GetChannel(ctx, *deleted.ChannelID)
		if err != nil {
			// Deletion already happened; a missing channel only costs the notice
			log.Printf("Deletion notice skipped, channel lookup failed: %v", err)
			return nil
		}
		for userID := range channel.RecipientSet() {
			e.emit(userID, types.EventMessageDeleted, notice)
		}
		return nil
	}

	e.emit(deleted.SenderID, types.EventMessageDeleted, notice)
	if deleted.RecipientID != nil && *deleted.RecipientID != deleted.SenderID {
		e.emit(*deleted.RecipientID, types.EventMessageDeleted, notice)
	}
	return nil
}

// emit pushes one event to a user's live handle, if any.
// A missing or dead handle is a delivery miss: logged at most, never surfaced.
func (e *Engine) emit(userID, event string, data interface{}) {
	conn, exists := e.registry.Lookup(userID)
	if !exists {
		return
	}
	if err := conn.WriteJSON(&types.Event{Event: event, Data: data}); err != nil {
		log.Printf("Failed to deliver %s to %s: %v", event, userID, err)
	}
}
