package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		chatID  int64
		creator string
		content string
		want    MessageErrorCode
	}{
		{"valid", 7, "u1", "hi", MessageNoError},
		{"zero chat id", 0, "u1", "hi", MessageInvalidChatID},
		{"negative chat id", -3, "u1", "hi", MessageInvalidChatID},
		{"empty creator", 7, "", "hi", MessageCreatorEmpty},
		{"blank creator", 7, "   ", "hi", MessageCreatorEmpty},
		{"empty content", 7, "u1", "", MessageContentEmpty},
		{"blank content", 7, "u1", "\t ", MessageContentEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateMessage(tt.chatID, tt.creator, tt.content))
		})
	}
}

func TestMessageFormatError_Error(t *testing.T) {
	err := MessageFormatError{Code: MessageContentEmpty}
	assert.Equal(t, "message format: content is empty", err.Error())
}
