package types

import (
	"time"
)

// ARCHITECTURAL DISCOVERY: Message kind constants defined exactly as the wire
// protocol expects to ensure compatibility with fanout routing and storage checks
const (
	MessageKindText     = "text"
	MessageKindFile     = "file"
	MessageKindLocation = "location"
	MessageKindPost     = "post"
)

// Inbound socket event names (client -> server)
const (
	EventSendMessage        = "sendMessage"
	EventSendChannelMessage = "send-channel-message"
	EventDeleteMessage      = "deleteMessage"
	EventTypingStart        = "typing-start"
	EventTypingStop         = "typing-stop"
	EventUserOnline         = "user-online"
	EventUserOffline        = "user-offline"
)

// Outbound socket event names (server -> client)
// FUNCTIONAL DISCOVERY: "recieve" spellings are load-bearing wire compatibility
// with the deployed web client and must not be corrected server-side
const (
	EventReceiveMessage        = "recieveMessage"
	EventReceiveChannelMessage = "recieve-channel-message"
	EventMessageDeleted        = "messageDeleted"
	EventUpdateOnlineStatus    = "update-online-status"
	EventUserTyping            = "userTyping"
	EventUserStopTyping        = "userStopTyping"
	EventAck                   = "ack"
)

// Event is the outbound wire envelope pushed to clients
// FUNCTIONAL DISCOVERY: Ack is set only on acknowledgement frames, echoing
// the client-supplied correlation id of the request being acknowledged
type Event struct {
	Event string      `json:"event"`
	Ack   string      `json:"ack,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// User represents a registered account
// FUNCTIONAL DISCOVERY: Password holds the bcrypt hash and is never serialized
type User struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Name     string    `json:"name,omitempty"`
	Image    string    `json:"image,omitempty"`
	Color    int       `json:"color"`
	Created  time.Time `json:"created_at"`
}

// UserRef is the denormalized display projection of a user embedded in
// delivered messages (name, avatar, color needed for immediate rendering)
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
	Color int    `json:"color"`
}

// Location is the lat/long payload of a location message
type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// PostRef is the embedded post summary payload of a post message
type PostRef struct {
	PostID      string `json:"postId"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
}

// Message is the persisted record of a chat message
// ARCHITECTURAL DISCOVERY: Exactly one payload field is populated per kind
// (content XOR file URL XOR location XOR post) - enforced by Validate()
// FUNCTIONAL DISCOVERY: RecipientID nil distinguishes a channel message from a
// direct message; ChannelID is retained so deletion fanout can identify the
// affected live parties without a reverse channel scan
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender"`
	RecipientID *string   `json:"recipient,omitempty"`
	ChannelID   *string   `json:"channelId,omitempty"`
	Kind        string    `json:"messageType"`
	Content     string    `json:"content,omitempty"`
	FileURL     string    `json:"fileUrl,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Post        *PostRef  `json:"post,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageData is a message joined with sender/recipient display fields.
// The join happens at fanout time, not persist time, because the live push
// needs display-ready data immediately.
type MessageData struct {
	ID        string    `json:"id"`
	Sender    *UserRef  `json:"sender"`
	Recipient *UserRef  `json:"recipient,omitempty"`
	ChannelID *string   `json:"channelId,omitempty"`
	Kind      string    `json:"messageType"`
	Content   string    `json:"content,omitempty"`
	FileURL   string    `json:"fileUrl,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Post      *PostRef  `json:"post,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Channel represents a named group conversation with one admin
// FUNCTIONAL DISCOVERY: Membership is static after creation; channels are
// never deleted in-flow and only accumulate message references
type Channel struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AdminID    string    `json:"admin"`
	MemberIDs  []string  `json:"members"`
	MessageIDs []string  `json:"messages,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RecipientSet returns the de-duplicated fanout set for a channel message.
// ARCHITECTURAL DISCOVERY: Modeled as a set (members UNION admin) so the
// admin/member overlap de-duplicates structurally rather than incidentally
func (c *Channel) RecipientSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.MemberIDs)+1)
	for _, id := range c.MemberIDs {
		set[id] = struct{}{}
	}
	set[c.AdminID] = struct{}{}
	return set
}

// PresenceUpdate is the payload of an update-online-status broadcast
type PresenceUpdate struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// TypingSignal is the payload of userTyping/userStopTyping relays
type TypingSignal struct {
	SenderID string `json:"senderId"`
}

// DeletionNotice is the payload of a messageDeleted notice
type DeletionNotice struct {
	MessageID string  `json:"messageId"`
	ChannelID *string `json:"channelId,omitempty"`
}
