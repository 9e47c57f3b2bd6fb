package fanout

import "errors"

// Fanout error taxonomy: validation and persistence errors travel back to the
// acting connection via its acknowledgement; a delivery miss (target not live)
// is not an error anywhere in this package.
var (
	ErrMissingRecipient  = errors.New("direct message missing recipient")
	ErrMissingChannel    = errors.New("channel message missing channel id")
	ErrNotMessageOwner   = errors.New("only the sender may delete a message")
	ErrNotChannelMember  = errors.New("sender is not a member of this channel")
	ErrRateLimitExceeded = errors.New("rate limit exceeded: 100 messages per minute")
)
