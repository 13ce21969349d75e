package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name string
		user User
		want UserErrorCode
	}{
		{"valid", User{Name: "alice", Password: "secret1"}, UserNoError},
		{"empty username", User{Name: "", Password: "secret1"}, UsernameEmpty},
		{"short username", User{Name: "al", Password: "secret1"}, UsernameTooShort},
		{"long username", User{Name: strings.Repeat("a", 33), Password: "secret1"}, UsernameTooLong},
		{"username with space", User{Name: "al ice", Password: "secret1"}, UsernameInvalidChars},
		{"empty password", User{Name: "alice", Password: ""}, PasswordEmpty},
		{"short password", User{Name: "alice", Password: "abc"}, PasswordTooShort},
		{"long password", User{Name: "alice", Password: strings.Repeat("p", 33)}, PasswordTooLong},
		{"password with space", User{Name: "alice", Password: "sec ret1"}, PasswordInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUser(tt.user))
		})
	}
}
