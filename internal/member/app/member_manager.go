package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"chat_backend_service/internal/buffered"
	"chat_backend_service/internal/member/domain"
	"chat_backend_service/internal/member/repository"
	"chat_backend_service/pkg/encrypt"
	"chat_backend_service/pkg/logger"
	"chat_backend_service/pkg/token"
)

// MemberManager is a write-back cache over the user store plus the session
// token lifecycle. Registrations live in the write buffer until Flush; the
// read buffer is seeded with the full credential directory at construction,
// so username lookups never hit the store on the hot path.
type MemberManager struct {
	repo   repository.MemberRepository
	secret []byte
	issuer string

	mu          sync.Mutex
	writeBuffer map[string]domain.Credentials
	readBuffer  map[string]domain.Credentials
}

var _ buffered.Flusher = (*MemberManager)(nil)

// NewMemberManager loads the credential directory and returns a ready
// manager. Construction is a single-owner step; two managers over the same
// store would race on registration conflicts.
func NewMemberManager(ctx context.Context, repo repository.MemberRepository, secret []byte, issuer string) (*MemberManager, error) {
	directory, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user directory: %w", err)
	}

	return &MemberManager{
		repo:        repo,
		secret:      secret,
		issuer:      issuer,
		writeBuffer: make(map[string]domain.Credentials),
		readBuffer:  directory,
	}, nil
}

// Register validates the credential pair, salts and hashes the password and
// buffers the new user. Nothing reaches the store until Flush.
func (m *MemberManager) Register(ctx context.Context, user domain.User) error {
	if code := domain.ValidateUser(user); code != domain.UserNoError {
		return domain.UserFormatError{Code: code}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usernameUsedLocked(user.Name) {
		return domain.ErrUserAlreadyExists
	}

	salt, err := encrypt.GenerateSalt(encrypt.SaltLength)
	if err != nil {
		return err
	}

	m.writeBuffer[user.Name] = domain.Credentials{
		PasswordHash: encrypt.HashPassword(user.Password, salt),
		Salt:         salt,
	}

	logger.Log.Info("user registered", zap.String("username", user.Name))
	return nil
}

// IssueToken authenticates the credential pair and signs a session token for
// 48 hours. An unknown username and a wrong password surface the same
// not-found error; callers get no hint which of the two failed.
func (m *MemberManager) IssueToken(ctx context.Context, user domain.User) (string, error) {
	if code := domain.ValidateUser(user); code != domain.UserNoError {
		return "", domain.UserFormatError{Code: code}
	}

	creds, err := m.lookupCredentials(ctx, user.Name)
	if err != nil {
		return "", err
	}

	if encrypt.HashPassword(user.Password, creds.Salt) != creds.PasswordHash {
		return "", domain.ErrUserNotFound
	}

	return token.Generate(m.secret, m.issuer, user.Name)
}

// IsValidToken verifies signature, issuer and expiry. A non-empty
// checkedUsername additionally requires the token subject to match. Every
// failure mode degrades to false, never an error.
func (m *MemberManager) IsValidToken(tokenStr, checkedUsername string) bool {
	claims, err := token.Verify(m.secret, m.issuer, tokenStr)
	if err != nil {
		return false
	}
	return checkedUsername == "" || claims.Username() == checkedUsername
}

// IsUsernameUsed reports whether the username is present in either buffer.
func (m *MemberManager) IsUsernameUsed(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usernameUsedLocked(username)
}

// Flush persists buffered registrations in one store transaction, merges them
// into the directory and clears the write buffer. On a store error the
// buffers are left untouched.
func (m *MemberManager) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.writeBuffer) == 0 {
		return nil
	}

	if err := m.repo.UpsertBatch(ctx, m.writeBuffer); err != nil {
		return err
	}

	flushed := len(m.writeBuffer)
	for name, creds := range m.writeBuffer {
		m.readBuffer[name] = creds
	}
	m.writeBuffer = make(map[string]domain.Credentials)

	logger.Log.Debug("user write buffer flushed", zap.Int("users", flushed))
	return nil
}

func (m *MemberManager) lookupCredentials(ctx context.Context, username string) (domain.Credentials, error) {
	m.mu.Lock()
	if creds, ok := m.writeBuffer[username]; ok {
		m.mu.Unlock()
		return creds, nil
	}
	if creds, ok := m.readBuffer[username]; ok {
		m.mu.Unlock()
		return creds, nil
	}
	m.mu.Unlock()

	registered, err := m.repo.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Credentials{}, domain.ErrUserNotFound
		}
		return domain.Credentials{}, err
	}

	creds := domain.Credentials{PasswordHash: registered.PasswordHash, Salt: registered.Salt}

	m.mu.Lock()
	m.readBuffer[username] = creds
	m.mu.Unlock()

	return creds, nil
}

func (m *MemberManager) usernameUsedLocked(username string) bool {
	if _, ok := m.writeBuffer[username]; ok {
		return true
	}
	_, ok := m.readBuffer[username]
	return ok
}
