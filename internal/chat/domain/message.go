package domain

import (
	"fmt"
	"time"
)

// Pagination start points understood by GetChatMessages and ChatsByUser.
// Any positive value is treated as a 1-based offset.
const (
	// SelectLast returns the final `count` entries of the range.
	SelectLast int64 = -1
	// SelectAll returns the whole range.
	SelectAll int64 = -2
)

// PostedMessage 表示聊天中一則已編號的訊息
// ChatIndex is the 1-based, gapless position of the message inside its chat,
// distinct from the globally monotonic ID.
type PostedMessage struct {
	ID         int64     `json:"id"`
	TimePosted time.Time `json:"time_posted"`
	SourceUser string    `json:"source_user"`
	ChatID     int64     `json:"chat_id"`
	ChatIndex  int64     `json:"chat_index"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
}

// ChatRef addresses a message by its position inside a chat.
type ChatRef struct {
	ChatID    int64
	ChatIndex int64
}

// MessageErrorCode enumerates message format failures.
type MessageErrorCode int

// Message format error codes.
const (
	MessageNoError MessageErrorCode = iota
	MessageInvalidChatID
	MessageCreatorEmpty
	MessageContentEmpty
)

// MessageFormatError carries the specific format failure of an AddMessage call.
type MessageFormatError struct {
	Code MessageErrorCode
}

func (e MessageFormatError) Error() string {
	switch e.Code {
	case MessageInvalidChatID:
		return "message format: invalid chat id"
	case MessageCreatorEmpty:
		return "message format: creator username is empty"
	case MessageContentEmpty:
		return "message format: content is empty"
	default:
		return fmt.Sprintf("message format: error code %d", e.Code)
	}
}

// ValidateMessage checks the fields of a message about to be posted.
func ValidateMessage(chatID int64, creatorUsername, content string) MessageErrorCode {
	switch {
	case chatID <= 0:
		return MessageInvalidChatID
	case isBlank(creatorUsername):
		return MessageCreatorEmpty
	case isBlank(content):
		return MessageContentEmpty
	default:
		return MessageNoError
	}
}

// IsValidMessageID reports whether id can refer to a stored message.
func IsValidMessageID(id int64) bool {
	return id > 0
}

// IsValidChatID reports whether id can refer to a chat.
func IsValidChatID(id int64) bool {
	return id > 0
}
