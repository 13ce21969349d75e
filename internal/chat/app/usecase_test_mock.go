package app

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chat_backend_service/internal/chat/domain"
)

// MockMessageRepository mocks the message backing store.
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) NextMessageID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) InsertBatch(ctx context.Context, messages []domain.PostedMessage) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id int64) (*domain.PostedMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.PostedMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) FindByChatIndex(ctx context.Context, chatID, chatIndex int64) (*domain.PostedMessage, error) {
	args := m.Called(ctx, chatID, chatIndex)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.PostedMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) FindRange(ctx context.Context, chatID, fromIndex, toIndex int64) ([]domain.PostedMessage, error) {
	args := m.Called(ctx, chatID, fromIndex, toIndex)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.PostedMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) CountByChat(ctx context.Context, chatID int64) (int64, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(int64), args.Error(1)
}

// MockChatRepository mocks the chat/participant backing store.
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateChat(ctx context.Context, creator string, updateTime time.Time) (int64, error) {
	args := m.Called(ctx, creator, updateTime)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChatRepository) TouchChat(ctx context.Context, chatID int64, updateTime time.Time) error {
	args := m.Called(ctx, chatID, updateTime)
	return args.Error(0)
}

func (m *MockChatRepository) AddParticipant(ctx context.Context, chatID int64, username string) error {
	args := m.Called(ctx, chatID, username)
	return args.Error(0)
}

func (m *MockChatRepository) RemoveParticipant(ctx context.Context, chatID int64, username string) (int64, error) {
	args := m.Called(ctx, chatID, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChatRepository) IsParticipant(ctx context.Context, chatID int64, username string) (bool, error) {
	args := m.Called(ctx, chatID, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepository) Participants(ctx context.Context, chatID int64) ([]string, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) ChatsByUser(ctx context.Context, username string, startPoint, count int64) ([]int64, error) {
	args := m.Called(ctx, username, startPoint, count)
	if args.Get(0) != nil {
		return args.Get(0).([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockACLRepository mocks the access-control backing store.
type MockACLRepository struct {
	mock.Mock
}

func (m *MockACLRepository) AddRight(ctx context.Context, chatID int64, right string, state bool, username string) error {
	args := m.Called(ctx, chatID, right, state, username)
	return args.Error(0)
}

func (m *MockACLRepository) SetRight(ctx context.Context, chatID int64, right string, state bool, username string) error {
	args := m.Called(ctx, chatID, right, state, username)
	return args.Error(0)
}

func (m *MockACLRepository) GetRight(ctx context.Context, chatID int64, right string, username string) (bool, bool, error) {
	args := m.Called(ctx, chatID, right, username)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockACLRepository) DeleteRight(ctx context.Context, chatID int64, right string, username string) (int64, error) {
	args := m.Called(ctx, chatID, right, username)
	return args.Get(0).(int64), args.Error(1)
}
