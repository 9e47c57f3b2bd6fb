package fanout

import (
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// Relay forwards ephemeral signals through the registry without persistence.
// FUNCTIONAL DISCOVERY: Typing indicators have no meaning for an offline peer -
// when the recipient is not live the signal is dropped, with no error and no ack.
type Relay struct {
	registry Registry
}

// NewRelay creates an ephemeral signal relay
func NewRelay(registry Registry) *Relay {
	return &Relay{registry: registry}
}

// TypingStart forwards a typing-started signal to the recipient only
func (r *Relay) TypingStart(senderID, recipientID string) {
	r.forward(recipientID, types.EventUserTyping, senderID)
}

// TypingStop forwards a typing-stopped signal to the recipient only
func (r *Relay) TypingStop(senderID, recipientID string) {
	r.forward(recipientID, types.EventUserStopTyping, senderID)
}

func (r *Relay) forward(recipientID, event, senderID string) {
	conn, exists := r.registry.Lookup(recipientID)
	if !exists {
		return
	}
	// Write errors are delivery misses too; ephemeral signals are never retried
	_ = conn.WriteJSON(&types.Event{Event: event, Data: &types.TypingSignal{SenderID: senderID}})
}
