package types

import "errors"

// ARCHITECTURAL DISCOVERY: Specific error types enable proper error handling
// and user-friendly acknowledgement messages throughout the system
var (
	ErrInvalidUserID      = errors.New("user ID must be 1-50 characters, alphanumeric + underscore/hyphen only")
	ErrInvalidEmail       = errors.New("email is required and must be at most 254 characters")
	ErrInvalidChannelName = errors.New("channel name must be 1-200 characters")
	ErrInvalidMessageKind = errors.New("message type must be one of text, file, location, post")
	ErrMissingPayload     = errors.New("message payload for its type is missing")
	ErrAmbiguousPayload   = errors.New("message must carry exactly one payload field for its type")
	ErrContentTooLarge    = errors.New("message content exceeds 64KB limit")
)
