package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"chat_backend_service/internal/buffered"
	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/internal/chat/repository"
	"chat_backend_service/pkg/logger"
)

// negativeCacheSize caps each absent-key cache. Oldest entries are evicted
// once the cap is reached.
const negativeCacheSize = 4096

// MessageManager is a write-back cache over the message store. New messages
// and read-flag updates live in the write buffer until Flush; reads are served
// from the buffers first and fall back to the store, remembering misses so a
// repeated lookup fails without another round trip.
//
// A single mutex serializes every buffer mutation. The post path in
// particular (read count, assign chat index, buffer, bump count) must be
// atomic per chat or concurrent posts would produce duplicate chat indices.
type MessageManager struct {
	repo repository.MessageRepository

	mu sync.Mutex
	// writeBuffer holds messages not yet persisted; it wins over readBuffer
	// for the same id.
	writeBuffer map[int64]domain.PostedMessage
	// readBuffer mirrors rows known to be durable.
	readBuffer map[int64]domain.PostedMessage
	// messagesByChat is the secondary index: chat id -> chat index -> message id.
	messagesByChat map[int64]map[int64]int64
	// chatMessagesCount caches the number of messages ever posted per chat.
	chatMessagesCount map[int64]int64
	invalidIDs        *buffered.NegativeCache[int64]
	invalidChatRefs   *buffered.NegativeCache[domain.ChatRef]
	nextMessageID     int64
}

var _ buffered.Flusher = (*MessageManager)(nil)

// NewMessageManager seeds the global id counter from the store and returns a
// ready manager. Construction must happen before any message is posted and
// must not race with another manager instance on the same store.
func NewMessageManager(ctx context.Context, repo repository.MessageRepository) (*MessageManager, error) {
	nextID, err := repo.NextMessageID(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed message id counter: %w", err)
	}

	return &MessageManager{
		repo:              repo,
		writeBuffer:       make(map[int64]domain.PostedMessage),
		readBuffer:        make(map[int64]domain.PostedMessage),
		messagesByChat:    make(map[int64]map[int64]int64),
		chatMessagesCount: make(map[int64]int64),
		invalidIDs:        buffered.NewNegativeCache[int64](negativeCacheSize),
		invalidChatRefs:   buffered.NewNegativeCache[domain.ChatRef](negativeCacheSize),
		nextMessageID:     nextID,
	}, nil
}

// AddMessage assigns the next global id and the next chat index to a new
// message and places it in the write buffer. Nothing is persisted until Flush.
func (m *MessageManager) AddMessage(ctx context.Context, chatID int64, creatorUsername, content string) (domain.PostedMessage, error) {
	if code := domain.ValidateMessage(chatID, creatorUsername, content); code != domain.MessageNoError {
		return domain.PostedMessage{}, domain.MessageFormatError{Code: code}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count, err := m.chatCountLocked(ctx, chatID)
	if err != nil {
		return domain.PostedMessage{}, err
	}

	msg := domain.PostedMessage{
		ID:         m.nextMessageID,
		TimePosted: time.Now(),
		SourceUser: creatorUsername,
		ChatID:     chatID,
		ChatIndex:  count + 1,
		Content:    content,
		IsRead:     false,
	}

	m.bufferMessage(m.writeBuffer, msg)
	m.chatMessagesCount[chatID] = msg.ChatIndex
	m.invalidIDs.Remove(msg.ID)
	m.invalidChatRefs.Remove(domain.ChatRef{ChatID: chatID, ChatIndex: msg.ChatIndex})
	m.nextMessageID++

	return msg, nil
}

// GetMessageByID returns a message by its global id, checking the write
// buffer, the read buffer and finally the store. A store miss is remembered.
func (m *MessageManager) GetMessageByID(ctx context.Context, messageID int64) (domain.PostedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadMessageByIDLocked(ctx, messageID)
}

// GetMessageByChatIndex returns a message by its position inside a chat, with
// the same buffer-then-store lookup and its own negative cache.
func (m *MessageManager) GetMessageByChatIndex(ctx context.Context, chatID, chatIndex int64) (domain.PostedMessage, error) {
	if !domain.IsValidChatID(chatID) {
		return domain.PostedMessage{}, domain.ErrInvalidChatID
	}
	if chatIndex <= 0 {
		return domain.PostedMessage{}, domain.ErrInvalidChatIndex
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ref := domain.ChatRef{ChatID: chatID, ChatIndex: chatIndex}
	if m.invalidChatRefs.Contains(ref) {
		return domain.PostedMessage{}, domain.ErrMessageNotFound
	}

	if msg, ok := m.bufferedByChatIndex(chatID, chatIndex); ok {
		return msg, nil
	}

	msg, err := m.repo.FindByChatIndex(ctx, chatID, chatIndex)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			m.invalidChatRefs.Add(ref)
		}
		return domain.PostedMessage{}, err
	}

	m.bufferMessage(m.readBuffer, *msg)
	return *msg, nil
}

// MarkMessageAsRead sets the read flag of a message. It returns false without
// buffering anything when the flag is already set. The updated copy goes to
// the write buffer and the stale read-buffer copy is evicted.
func (m *MessageManager) MarkMessageAsRead(ctx context.Context, messageID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, err := m.loadMessageByIDLocked(ctx, messageID)
	if err != nil {
		return false, err
	}

	if msg.IsRead {
		return false, nil
	}

	msg.IsRead = true
	m.bufferMessage(m.writeBuffer, msg)
	delete(m.readBuffer, messageID)

	return true, nil
}

// GetChatMessagesCount returns how many messages were ever posted to a chat,
// fetching the value from the store on first reference.
func (m *MessageManager) GetChatMessagesCount(ctx context.Context, chatID int64) (int64, error) {
	if !domain.IsValidChatID(chatID) {
		return 0, domain.ErrInvalidChatID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatCountLocked(ctx, chatID)
}

// GetChatMessages answers a paginated range query. startPoint selects the
// mode: SelectAll, SelectLast (final `count` entries) or a 1-based offset; an
// offset past the end returns an empty result, a short tail returns a short
// page. Cached entries are served from the buffers and every contiguous run
// of uncached indices costs exactly one store range scan. The result is
// always in ascending chat-index order.
func (m *MessageManager) GetChatMessages(ctx context.Context, chatID, startPoint, count int64) ([]domain.PostedMessage, error) {
	if !domain.IsValidChatID(chatID) {
		return nil, domain.ErrInvalidChatID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	total, err := m.chatCountLocked(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if startPoint > total {
		return []domain.PostedMessage{}, nil
	}

	var first, last int64
	switch startPoint {
	case domain.SelectAll:
		first, last = 1, total
	case domain.SelectLast:
		first, last = total-count+1, total
	default:
		first = startPoint
		last = startPoint + count - 1
		if last > total {
			last = total
		}
	}
	if first < 1 {
		first = 1
	}
	if last < first {
		return []domain.PostedMessage{}, nil
	}

	byIndex := make(map[int64]domain.PostedMessage, last-first+1)

	// Walk the range: cached indices close the open gap, uncached ones
	// extend it. Every closed gap becomes one store range scan.
	type indexRange struct{ from, to int64 }
	var gaps []indexRange
	gapStart := int64(-1)

	for chatIndex := first; chatIndex <= last; chatIndex++ {
		if msg, ok := m.bufferedByChatIndex(chatID, chatIndex); ok {
			byIndex[chatIndex] = msg
			if gapStart != -1 {
				gaps = append(gaps, indexRange{gapStart, chatIndex - 1})
				gapStart = -1
			}
		} else if gapStart == -1 {
			gapStart = chatIndex
		}
	}
	if gapStart != -1 {
		gaps = append(gaps, indexRange{gapStart, last})
	}

	for _, gap := range gaps {
		fetched, err := m.repo.FindRange(ctx, chatID, gap.from, gap.to)
		if err != nil {
			return nil, err
		}
		for _, msg := range fetched {
			byIndex[msg.ChatIndex] = msg
			m.bufferMessage(m.readBuffer, msg)
		}
	}

	messages := make([]domain.PostedMessage, 0, last-first+1)
	for chatIndex := first; chatIndex <= last; chatIndex++ {
		if msg, ok := byIndex[chatIndex]; ok {
			messages = append(messages, msg)
		}
	}

	return messages, nil
}

// Flush persists the whole write buffer in one store transaction, merges it
// into the read buffer and clears it. On a store error the buffers are left
// untouched.
func (m *MessageManager) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.writeBuffer) == 0 {
		return nil
	}

	messages := make([]domain.PostedMessage, 0, len(m.writeBuffer))
	for _, msg := range m.writeBuffer {
		messages = append(messages, msg)
	}

	if err := m.repo.InsertBatch(ctx, messages); err != nil {
		return err
	}

	for id, msg := range m.writeBuffer {
		m.readBuffer[id] = msg
	}
	m.writeBuffer = make(map[int64]domain.PostedMessage)

	logger.Log.Debug("message write buffer flushed", zap.Int("messages", len(messages)))
	return nil
}

func (m *MessageManager) loadMessageByIDLocked(ctx context.Context, messageID int64) (domain.PostedMessage, error) {
	if !domain.IsValidMessageID(messageID) {
		return domain.PostedMessage{}, domain.ErrInvalidMessageID
	}

	if m.invalidIDs.Contains(messageID) {
		return domain.PostedMessage{}, domain.ErrMessageNotFound
	}

	if msg, ok := m.writeBuffer[messageID]; ok {
		return msg, nil
	}
	if msg, ok := m.readBuffer[messageID]; ok {
		return msg, nil
	}

	msg, err := m.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			m.invalidIDs.Add(messageID)
		}
		return domain.PostedMessage{}, err
	}

	m.bufferMessage(m.readBuffer, *msg)
	return *msg, nil
}

func (m *MessageManager) chatCountLocked(ctx context.Context, chatID int64) (int64, error) {
	if count, ok := m.chatMessagesCount[chatID]; ok {
		return count, nil
	}

	count, err := m.repo.CountByChat(ctx, chatID)
	if err != nil {
		return 0, err
	}
	m.chatMessagesCount[chatID] = count
	return count, nil
}

// bufferMessage stores msg in the given buffer and keeps the secondary index
// pointing at it.
func (m *MessageManager) bufferMessage(buffer map[int64]domain.PostedMessage, msg domain.PostedMessage) {
	buffer[msg.ID] = msg

	chatIndex := m.messagesByChat[msg.ChatID]
	if chatIndex == nil {
		chatIndex = make(map[int64]int64)
		m.messagesByChat[msg.ChatID] = chatIndex
	}
	chatIndex[msg.ChatIndex] = msg.ID
}

// bufferedByChatIndex resolves a chat position through the secondary index
// into either buffer.
func (m *MessageManager) bufferedByChatIndex(chatID, chatIndex int64) (domain.PostedMessage, bool) {
	chatMessages, ok := m.messagesByChat[chatID]
	if !ok {
		return domain.PostedMessage{}, false
	}
	messageID, ok := chatMessages[chatIndex]
	if !ok {
		return domain.PostedMessage{}, false
	}
	if msg, ok := m.writeBuffer[messageID]; ok {
		return msg, true
	}
	msg, ok := m.readBuffer[messageID]
	return msg, ok
}
