package usecase

import "fmt"

// Operational errors raised when the room/message store misbehaves. Validation
// errors are domain sentinels and are returned before any store interaction.
var (
	// ErrDirectoryLoad indicates a store read failure while building the
	// conversation directory.
	ErrDirectoryLoad = fmt.Errorf("conversation use case: directory load failed")

	// ErrSendFailed indicates a store failure during the room-ensure or append
	// step of a send. The message is simply never recorded; there is no
	// partial-write state to reconcile.
	ErrSendFailed = fmt.Errorf("conversation use case: send failed")
)
