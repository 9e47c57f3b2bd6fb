package channel

import "errors"

// ARCHITECTURAL DISCOVERY: Pre-defined error variables enable precise error
// handling, better testing, and consistent error messages
var (
	ErrInvalidChannelName = errors.New("channel name must be 1-200 characters")
	ErrInvalidAdmin       = errors.New("invalid admin user ID")
	ErrInvalidMember      = errors.New("invalid member user ID")
	ErrEmptyMemberList    = errors.New("channel requires at least one member")
	ErrNotMember          = errors.New("user is not a member of this channel")
)
