package websocket

import (
	"encoding/json"

	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// envelope is the inbound wire frame
// ARCHITECTURAL DISCOVERY: Data stays raw until the event name selects a
// payload type - a malformed payload for one event must not poison the read loop
type envelope struct {
	Event string          `json:"event"`
	Ack   string          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// sendMessageRequest is the payload of a sendMessage event.
// The sender field of the persisted message comes from the authenticated
// connection, never from the payload.
type sendMessageRequest struct {
	Recipient string          `json:"recipient"`
	Kind      string          `json:"messageType"`
	Content   string          `json:"content,omitempty"`
	FileURL   string          `json:"fileUrl,omitempty"`
	Location  *types.Location `json:"location,omitempty"`
	Post      *types.PostRef  `json:"post,omitempty"`
}

// sendChannelMessageRequest is the payload of a send-channel-message event
type sendChannelMessageRequest struct {
	ChannelID string          `json:"channelId"`
	Kind      string          `json:"messageType"`
	Content   string          `json:"content,omitempty"`
	FileURL   string          `json:"fileUrl,omitempty"`
	Location  *types.Location `json:"location,omitempty"`
	Post      *types.PostRef  `json:"post,omitempty"`
}

// deleteMessageRequest is the payload of a deleteMessage event
type deleteMessageRequest struct {
	MessageID string `json:"messageId"`
}

// typingRequest is the payload of typing-start / typing-stop events
type typingRequest struct {
	Recipient string `json:"recipient"`
}

// ackStatus values reported back to the acting connection
const (
	ackOK    = "ok"
	ackError = "error"
)

// ackResult is the acknowledgement payload
// FUNCTIONAL DISCOVERY: ok means delivered-to-server (persisted), not
// delivered-to-recipient - live delivery is best-effort and unacknowledged
type ackResult struct {
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	MessageID   string             `json:"messageId,omitempty"`
	MessageData *types.MessageData `json:"messageData,omitempty"`
}
