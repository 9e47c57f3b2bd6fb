package types

import (
	"strings"
	"testing"
)

func TestIsValidUserID(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		valid  bool
	}{
		{"simple alphanumeric", "user123", true},
		{"with underscore and hyphen", "user_one-2", true},
		{"single character", "a", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 51), false},
		{"max length", strings.Repeat("a", 50), true},
		{"spaces rejected", "user one", false},
		{"special characters rejected", "user@example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidUserID(tt.userID); got != tt.valid {
				t.Errorf("IsValidUserID(%q) = %v, want %v", tt.userID, got, tt.valid)
			}
		})
	}
}

func TestMessageValidate(t *testing.T) {
	recipient := "bob"

	tests := []struct {
		name    string
		message *Message
		wantErr error
	}{
		{
			name:    "valid text message",
			message: &Message{SenderID: "alice", RecipientID: &recipient, Kind: MessageKindText, Content: "hello"},
			wantErr: nil,
		},
		{
			name:    "valid file message",
			message: &Message{SenderID: "alice", RecipientID: &recipient, Kind: MessageKindFile, FileURL: "https://cdn.example.com/x.png"},
			wantErr: nil,
		},
		{
			name:    "valid location message",
			message: &Message{SenderID: "alice", RecipientID: &recipient, Kind: MessageKindLocation, Location: &Location{Lat: 12.97, Long: 77.59}},
			wantErr: nil,
		},
		{
			name:    "valid post message",
			message: &Message{SenderID: "alice", RecipientID: &recipient, Kind: MessageKindPost, Post: &PostRef{PostID: "p1"}},
			wantErr: nil,
		},
		{
			name:    "unknown kind",
			message: &Message{SenderID: "alice", Kind: "video", Content: "x"},
			wantErr: ErrInvalidMessageKind,
		},
		{
			name:    "invalid sender",
			message: &Message{SenderID: "not valid!", Kind: MessageKindText, Content: "x"},
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "text without content",
			message: &Message{SenderID: "alice", Kind: MessageKindText},
			wantErr: ErrMissingPayload,
		},
		{
			name:    "file without url",
			message: &Message{SenderID: "alice", Kind: MessageKindFile},
			wantErr: ErrMissingPayload,
		},
		{
			name:    "post without post id",
			message: &Message{SenderID: "alice", Kind: MessageKindPost, Post: &PostRef{}},
			wantErr: ErrMissingPayload,
		},
		{
			name:    "two payloads rejected",
			message: &Message{SenderID: "alice", Kind: MessageKindText, Content: "x", FileURL: "y"},
			wantErr: ErrAmbiguousPayload,
		},
		{
			name:    "oversized text content",
			message: &Message{SenderID: "alice", Kind: MessageKindText, Content: strings.Repeat("a", 65537)},
			wantErr: ErrContentTooLarge,
		},
		{
			name:    "content at limit",
			message: &Message{SenderID: "alice", Kind: MessageKindText, Content: strings.Repeat("a", 65536)},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.message.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestChannelValidate(t *testing.T) {
	tests := []struct {
		name    string
		channel *Channel
		wantErr error
	}{
		{"valid", &Channel{Name: "general", AdminID: "alice", MemberIDs: []string{"bob"}}, nil},
		{"empty name", &Channel{Name: "", AdminID: "alice"}, ErrInvalidChannelName},
		{"name too long", &Channel{Name: strings.Repeat("n", 201), AdminID: "alice"}, ErrInvalidChannelName},
		{"bad admin", &Channel{Name: "general", AdminID: ""}, ErrInvalidUserID},
		{"bad member", &Channel{Name: "general", AdminID: "alice", MemberIDs: []string{"ok", "not ok"}}, ErrInvalidUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.channel.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestChannelRecipientSet(t *testing.T) {
	t.Run("admin outside member list is added", func(t *testing.T) {
		ch := &Channel{AdminID: "admin", MemberIDs: []string{"a", "b"}}
		set := ch.RecipientSet()
		if len(set) != 3 {
			t.Fatalf("expected 3 recipients, got %d", len(set))
		}
		for _, id := range []string{"admin", "a", "b"} {
			if _, ok := set[id]; !ok {
				t.Errorf("recipient set missing %s", id)
			}
		}
	})

	t.Run("admin overlapping member list appears once", func(t *testing.T) {
		ch := &Channel{AdminID: "a", MemberIDs: []string{"a", "b"}}
		set := ch.RecipientSet()
		if len(set) != 2 {
			t.Fatalf("expected 2 recipients, got %d", len(set))
		}
	})
}
