package conversation

import "errors"

// Domain-level errors for conversation behaviors
var (
	ErrInvalidParticipants = errors.New("conversation: invalid participant identifiers")
	ErrMissingIdentity     = errors.New("conversation: no authenticated user identity")
	ErrEmptyMessage        = errors.New("conversation: message text is empty")
	ErrMessageTooLong      = errors.New("conversation: message text exceeds the length limit")
)
