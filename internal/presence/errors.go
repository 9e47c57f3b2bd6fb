package presence

import "errors"

// Coordinator lifecycle errors
var (
	ErrAlreadyRunning   = errors.New("presence coordinator is already running")
	ErrNotRunning       = errors.New("presence coordinator is not running")
	ErrEventChannelFull = errors.New("presence event channel is full")
)
