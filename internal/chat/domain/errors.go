package domain

import "errors"

// Failure conditions surfaced by the chat managers and repositories. Store
// connectivity errors are wrapped separately and never mapped onto these.
var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrChatNotFound     = errors.New("chat not found")
	ErrInvalidMessageID = errors.New("invalid message id")
	ErrInvalidChatID    = errors.New("invalid chat id")
	ErrInvalidChatIndex = errors.New("invalid chat index")

	// ErrNotParticipant is returned when a user acts on a chat they are not in.
	ErrNotParticipant = errors.New("user is not a chat participant")
	// ErrForbidden is returned when an ACL right denies the operation.
	ErrForbidden = errors.New("operation forbidden by chat acl")
	// ErrUnknownRight is returned for a right name outside the known set.
	ErrUnknownRight = errors.New("unknown acl right")
	// ErrRightNotFound is returned when clearing a right that is not stored.
	ErrRightNotFound = errors.New("acl right not found")
)
