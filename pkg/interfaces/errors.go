package interfaces

import "errors"

// Common collaborator errors used across components
// FUNCTIONAL DISCOVERY: "already deleted" and "never existed" both manifest as
// the same not-found error; distinguishing them is out of scope
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrChannelNotFound = errors.New("channel not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)
