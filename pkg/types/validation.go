package types

import (
	"regexp"
)

// FUNCTIONAL DISCOVERY: Regex compiled once at package initialization
// for better performance in high-frequency validation scenarios
var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxContentBytes = 65536 // 64KB

// IsValidUserID checks if a user ID meets format requirements
func IsValidUserID(userID string) bool {
	if len(userID) < 1 || len(userID) > 50 {
		return false
	}
	return userIDRegex.MatchString(userID)
}

// IsValidMessageKind checks if the kind is one of the four allowed kinds
func IsValidMessageKind(kind string) bool {
	switch kind {
	case MessageKindText, MessageKindFile, MessageKindLocation, MessageKindPost:
		return true
	default:
		return false
	}
}

// Validate ensures the message carries exactly one payload field matching its
// kind. Rejected messages are reported to the sender only and never persisted.
func (m *Message) Validate() error {
	if !IsValidMessageKind(m.Kind) {
		return ErrInvalidMessageKind
	}
	if !IsValidUserID(m.SenderID) {
		return ErrInvalidUserID
	}

	// FUNCTIONAL DISCOVERY: Count populated payload fields once, then match
	// against the kind - catches both missing and ambiguous payloads
	populated := 0
	if m.Content != "" {
		populated++
	}
	if m.FileURL != "" {
		populated++
	}
	if m.Location != nil {
		populated++
	}
	if m.Post != nil {
		populated++
	}
	if populated > 1 {
		return ErrAmbiguousPayload
	}

	switch m.Kind {
	case MessageKindText:
		if m.Content == "" {
			return ErrMissingPayload
		}
		if len(m.Content) > maxContentBytes {
			return ErrContentTooLarge
		}
	case MessageKindFile:
		if m.FileURL == "" {
			return ErrMissingPayload
		}
	case MessageKindLocation:
		if m.Location == nil {
			return ErrMissingPayload
		}
	case MessageKindPost:
		if m.Post == nil || m.Post.PostID == "" {
			return ErrMissingPayload
		}
	}
	return nil
}

// Validate ensures the channel meets all creation requirements
func (c *Channel) Validate() error {
	if len(c.Name) < 1 || len(c.Name) > 200 {
		return ErrInvalidChannelName
	}
	if !IsValidUserID(c.AdminID) {
		return ErrInvalidUserID
	}
	for _, id := range c.MemberIDs {
		if !IsValidUserID(id) {
			return ErrInvalidUserID
		}
	}
	return nil
}
