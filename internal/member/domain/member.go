package domain

import (
	"errors"
	"fmt"
	"strings"
)

// User carries the plaintext credentials of a register or login request. The
// password never leaves the manager; only its salted hash is buffered.
type User struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Credentials is the stored form of a user's secret: the iterated salted hash
// and the per-user salt it was derived with.
type Credentials struct {
	PasswordHash string
	Salt         string
}

// RegisteredUser 表示一筆已註冊的帳號資料
type RegisteredUser struct {
	Name         string
	PasswordHash string
	Salt         string
}

// Failure conditions surfaced by the member manager. A wrong password and an
// unknown username both surface ErrUserNotFound so callers cannot tell which
// of the two failed.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserErrorCode enumerates credential format failures.
type UserErrorCode int

// Credential format error codes.
const (
	UserNoError UserErrorCode = iota
	UsernameEmpty
	UsernameTooShort
	UsernameInvalidChars
	PasswordEmpty
	PasswordTooShort
	PasswordInvalidChars
	UsernameTooLong
	PasswordTooLong
)

// UserFormatError carries the specific format failure of a credential pair.
type UserFormatError struct {
	Code UserErrorCode
}

func (e UserFormatError) Error() string {
	switch e.Code {
	case UsernameEmpty:
		return "user format: username is empty"
	case UsernameTooShort:
		return "user format: username is too short"
	case UsernameTooLong:
		return "user format: username is too long"
	case UsernameInvalidChars:
		return "user format: username contains invalid characters"
	case PasswordEmpty:
		return "user format: password is empty"
	case PasswordTooShort:
		return "user format: password is too short"
	case PasswordTooLong:
		return "user format: password is too long"
	case PasswordInvalidChars:
		return "user format: password contains invalid characters"
	default:
		return fmt.Sprintf("user format: error code %d", e.Code)
	}
}

// Username and password length bounds.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 6
	MaxPasswordLen = 32
)

// ValidateUser checks a credential pair against the format rules.
func ValidateUser(u User) UserErrorCode {
	switch {
	case len(u.Name) == 0:
		return UsernameEmpty
	case len(u.Name) < MinUsernameLen:
		return UsernameTooShort
	case len(u.Name) > MaxUsernameLen:
		return UsernameTooLong
	case strings.Contains(u.Name, " "):
		return UsernameInvalidChars
	case len(u.Password) == 0:
		return PasswordEmpty
	case len(u.Password) < MinPasswordLen:
		return PasswordTooShort
	case len(u.Password) > MaxPasswordLen:
		return PasswordTooLong
	case strings.Contains(u.Password, " "):
		return PasswordInvalidChars
	default:
		return UserNoError
	}
}
