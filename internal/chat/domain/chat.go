package domain

import (
	"strings"
	"time"
)

// Chat 表示一個聊天室
type Chat struct {
	ID          int64     `json:"id"`
	Creator     string    `json:"creator"`
	TimeUpdated time.Time `json:"time_updated"`
}

// Access-control right names stored in the ACL tables.
const (
	RightPostMessage = "post_message"
	RightInviteUser  = "invite_user"
)

// IsKnownRight reports whether right names one of the stored ACL rights.
func IsKnownRight(right string) bool {
	return right == RightPostMessage || right == RightInviteUser
}

// ACLRight is one access-control entry. An empty Username means the entry is
// the chat-wide default, overridable per user.
type ACLRight struct {
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username"`
	Right    string `json:"right"`
	State    bool   `json:"state"`
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
