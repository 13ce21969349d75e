package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg/logger"
)

func newTestMessageManager(t *testing.T, repo *MockMessageRepository, nextID int64) *MessageManager {
	t.Helper()
	logger.SetNewNop()

	repo.On("NextMessageID", mock.Anything).Return(nextID, nil).Once()

	m, err := NewMessageManager(context.Background(), repo)
	assert.NoError(t, err)
	return m
}

func TestMessageManager_AddMessage_AssignsGaplessChatIndices(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(0), nil).Once()

	first, err := m.AddMessage(ctx, 7, "u1", "hi")
	assert.NoError(t, err)
	second, err := m.AddMessage(ctx, 7, "u1", "there")
	assert.NoError(t, err)

	assert.Equal(t, int64(1), first.ChatIndex)
	assert.Equal(t, int64(2), second.ChatIndex)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	count, err := m.GetChatMessagesCount(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// the count was fetched from the store exactly once
	repo.AssertExpectations(t)
}

func TestMessageManager_AddMessage_FormatErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	tests := []struct {
		name    string
		chatID  int64
		creator string
		content string
		want    domain.MessageErrorCode
	}{
		{"invalid chat id", 0, "u1", "hi", domain.MessageInvalidChatID},
		{"empty creator", 7, "", "hi", domain.MessageCreatorEmpty},
		{"empty content", 7, "u1", " ", domain.MessageContentEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddMessage(ctx, tt.chatID, tt.creator, tt.content)

			var formatErr domain.MessageFormatError
			assert.ErrorAs(t, err, &formatErr)
			assert.Equal(t, tt.want, formatErr.Code)
		})
	}
}

func TestMessageManager_GetChatMessages_AllBufferedAscending(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(0), nil).Once()

	_, err := m.AddMessage(ctx, 7, "u1", "hi")
	assert.NoError(t, err)
	_, err = m.AddMessage(ctx, 7, "u1", "there")
	assert.NoError(t, err)

	messages, err := m.GetChatMessages(ctx, 7, domain.SelectAll, 0)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, int64(1), messages[0].ChatIndex)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, int64(2), messages[1].ChatIndex)
	assert.Equal(t, "there", messages[1].Content)

	// everything came from the write buffer
	repo.AssertNotCalled(t, "FindRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageManager_GetChatMessages_StitchesCachedAndFetched(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 10)

	storeMsg := func(id, chatIndex int64) domain.PostedMessage {
		return domain.PostedMessage{ID: id, SourceUser: "u1", ChatID: 7, ChatIndex: chatIndex, Content: "m"}
	}

	repo.On("CountByChat", ctx, int64(7)).Return(int64(4), nil).Once()

	// warm the cache with index 2 only
	cached := storeMsg(2, 2)
	repo.On("FindByChatIndex", ctx, int64(7), int64(2)).Return(&cached, nil).Once()
	_, err := m.GetMessageByChatIndex(ctx, 7, 2)
	assert.NoError(t, err)

	// indices 1 and 3..4 are uncached: one range scan per contiguous gap
	repo.On("FindRange", ctx, int64(7), int64(1), int64(1)).
		Return([]domain.PostedMessage{storeMsg(1, 1)}, nil).Once()
	repo.On("FindRange", ctx, int64(7), int64(3), int64(4)).
		Return([]domain.PostedMessage{storeMsg(3, 3), storeMsg(4, 4)}, nil).Once()

	messages, err := m.GetChatMessages(ctx, 7, domain.SelectAll, 0)
	assert.NoError(t, err)
	assert.Len(t, messages, 4)
	for i, msg := range messages {
		assert.Equal(t, int64(i+1), msg.ChatIndex)
	}

	repo.AssertExpectations(t)

	// the fetched rows are now cached: the same query needs no store call
	again, err := m.GetChatMessages(ctx, 7, domain.SelectAll, 0)
	assert.NoError(t, err)
	assert.Len(t, again, 4)
	repo.AssertNumberOfCalls(t, "FindRange", 2)
}

func TestMessageManager_GetChatMessages_Last(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 10)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(5), nil).Once()
	repo.On("FindRange", ctx, int64(7), int64(4), int64(5)).
		Return([]domain.PostedMessage{
			{ID: 4, ChatID: 7, ChatIndex: 4},
			{ID: 5, ChatID: 7, ChatIndex: 5},
		}, nil).Once()

	messages, err := m.GetChatMessages(ctx, 7, domain.SelectLast, 2)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, int64(4), messages[0].ChatIndex)
	assert.Equal(t, int64(5), messages[1].ChatIndex)

	repo.AssertExpectations(t)
}

func TestMessageManager_GetChatMessages_LastClampsToChatStart(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 10)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(3), nil).Once()
	repo.On("FindRange", ctx, int64(7), int64(1), int64(3)).
		Return([]domain.PostedMessage{
			{ID: 1, ChatID: 7, ChatIndex: 1},
			{ID: 2, ChatID: 7, ChatIndex: 2},
			{ID: 3, ChatID: 7, ChatIndex: 3},
		}, nil).Once()

	// asking for more than exists returns everything, not an error
	messages, err := m.GetChatMessages(ctx, 7, domain.SelectLast, 10)
	assert.NoError(t, err)
	assert.Len(t, messages, 3)

	repo.AssertExpectations(t)
}

func TestMessageManager_GetChatMessages_OffsetPastEndIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 10)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(3), nil).Once()

	messages, err := m.GetChatMessages(ctx, 7, 5, 2)
	assert.NoError(t, err)
	assert.Empty(t, messages)

	repo.AssertNotCalled(t, "FindRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageManager_GetChatMessages_ShortTailPage(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 10)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(4), nil).Once()
	repo.On("FindRange", ctx, int64(7), int64(3), int64(4)).
		Return([]domain.PostedMessage{
			{ID: 3, ChatID: 7, ChatIndex: 3},
			{ID: 4, ChatID: 7, ChatIndex: 4},
		}, nil).Once()

	messages, err := m.GetChatMessages(ctx, 7, 3, 10)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)

	repo.AssertExpectations(t)
}

func TestMessageManager_GetMessageByID_NegativeCacheShortCircuits(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	repo.On("FindByID", ctx, int64(99)).Return(nil, domain.ErrMessageNotFound).Once()

	_, err := m.GetMessageByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	// the second lookup must fail locally without a store round trip
	_, err = m.GetMessageByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	repo.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestMessageManager_GetMessageByID_InvalidID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	_, err := m.GetMessageByID(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMessageID)
	_, err = m.GetMessageByID(ctx, -5)
	assert.ErrorIs(t, err, domain.ErrInvalidMessageID)
}

func TestMessageManager_GetMessageByChatIndex_NegativePairCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	repo.On("FindByChatIndex", ctx, int64(7), int64(9)).Return(nil, domain.ErrMessageNotFound).Once()

	_, err := m.GetMessageByChatIndex(ctx, 7, 9)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
	_, err = m.GetMessageByChatIndex(ctx, 7, 9)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	repo.AssertNumberOfCalls(t, "FindByChatIndex", 1)
}

func TestMessageManager_PostEvictsNegativeEntries(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	// a miss on the id and position the next post will occupy
	repo.On("FindByID", ctx, int64(1)).Return(nil, domain.ErrMessageNotFound).Once()
	repo.On("FindByChatIndex", ctx, int64(7), int64(1)).Return(nil, domain.ErrMessageNotFound).Once()
	_, _ = m.GetMessageByID(ctx, 1)
	_, _ = m.GetMessageByChatIndex(ctx, 7, 1)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(0), nil).Once()
	posted, err := m.AddMessage(ctx, 7, "u1", "hi")
	assert.NoError(t, err)

	// both lookups now hit the write buffer, not the stale negative entries
	byID, err := m.GetMessageByID(ctx, posted.ID)
	assert.NoError(t, err)
	assert.Equal(t, posted, byID)

	byRef, err := m.GetMessageByChatIndex(ctx, 7, 1)
	assert.NoError(t, err)
	assert.Equal(t, posted, byRef)

	repo.AssertExpectations(t)
}

func TestMessageManager_MarkMessageAsRead(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(0), nil).Once()
	posted, err := m.AddMessage(ctx, 7, "u1", "hi")
	assert.NoError(t, err)

	changed, err := m.MarkMessageAsRead(ctx, posted.ID)
	assert.NoError(t, err)
	assert.True(t, changed)

	// already read: no further mutation
	changed, err = m.MarkMessageAsRead(ctx, posted.ID)
	assert.NoError(t, err)
	assert.False(t, changed)

	msg, err := m.GetMessageByID(ctx, posted.ID)
	assert.NoError(t, err)
	assert.True(t, msg.IsRead)
}

func TestMessageManager_Flush(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(0), nil).Once()
	first, err := m.AddMessage(ctx, 7, "u1", "hi")
	assert.NoError(t, err)
	second, err := m.AddMessage(ctx, 7, "u1", "there")
	assert.NoError(t, err)

	repo.On("InsertBatch", ctx, mock.MatchedBy(func(messages []domain.PostedMessage) bool {
		return len(messages) == 2
	})).Return(nil).Once()

	assert.NoError(t, m.Flush(ctx))

	// write set is empty: a second flush must not touch the store
	assert.NoError(t, m.Flush(ctx))
	repo.AssertNumberOfCalls(t, "InsertBatch", 1)

	// flushed entries stay readable with identical field values, served
	// from the read buffer
	got, err := m.GetMessageByID(ctx, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = m.GetMessageByID(ctx, second.ID)
	assert.NoError(t, err)
	assert.Equal(t, second, got)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMessageManager_FlushStoreErrorKeepsBuffer(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	repo.On("CountByChat", ctx, int64(7)).Return(int64(0), nil).Once()
	_, err := m.AddMessage(ctx, 7, "u1", "hi")
	assert.NoError(t, err)

	storeErr := errors.New("connection reset")
	repo.On("InsertBatch", ctx, mock.Anything).Return(storeErr).Once()

	assert.ErrorIs(t, m.Flush(ctx), storeErr)

	// the write set survived: a retry hits the store again
	repo.On("InsertBatch", ctx, mock.MatchedBy(func(messages []domain.PostedMessage) bool {
		return len(messages) == 1
	})).Return(nil).Once()
	assert.NoError(t, m.Flush(ctx))

	repo.AssertExpectations(t)
}

func TestMessageManager_GetChatMessagesCount_InvalidChatID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMessageRepository)
	m := newTestMessageManager(t, repo, 1)

	_, err := m.GetChatMessagesCount(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidChatID)
}
