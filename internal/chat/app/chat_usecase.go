package app

import (
	"context"
	"time"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/internal/chat/repository"
)

// ChatUseCase 控制聊天室的成員與權限
// It fronts the MessageManager with participant and ACL checks: only
// participants see a chat, and per-user rights override the chat default.
type ChatUseCase struct {
	chatRepo repository.ChatRepository
	aclRepo  repository.ACLRepository
	messages *MessageManager
}

// NewChatUseCase create a ChatUseCase
func NewChatUseCase(chatRepo repository.ChatRepository, aclRepo repository.ACLRepository, messages *MessageManager) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		aclRepo:  aclRepo,
		messages: messages,
	}
}

// CreateChat inserts a chat and makes the creator its first participant.
func (uc *ChatUseCase) CreateChat(ctx context.Context, creator string) (int64, error) {
	chatID, err := uc.chatRepo.CreateChat(ctx, creator, time.Now())
	if err != nil {
		return 0, err
	}

	if err := uc.chatRepo.AddParticipant(ctx, chatID, creator); err != nil {
		return 0, err
	}

	return chatID, nil
}

// AddParticipant lets inviter add username to a chat, subject to the invite
// right.
func (uc *ChatUseCase) AddParticipant(ctx context.Context, chatID int64, inviter, username string) error {
	if err := uc.requireRight(ctx, chatID, inviter, domain.RightInviteUser); err != nil {
		return err
	}
	return uc.chatRepo.AddParticipant(ctx, chatID, username)
}

// RemoveParticipant removes username from a chat.
func (uc *ChatUseCase) RemoveParticipant(ctx context.Context, chatID int64, username string) error {
	removed, err := uc.chatRepo.RemoveParticipant(ctx, chatID, username)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrNotParticipant
	}
	return nil
}

// PostMessage posts into a chat on behalf of username, subject to the post
// right, and bumps the chat's update time.
func (uc *ChatUseCase) PostMessage(ctx context.Context, chatID int64, username, content string) (domain.PostedMessage, error) {
	if err := uc.requireRight(ctx, chatID, username, domain.RightPostMessage); err != nil {
		return domain.PostedMessage{}, err
	}

	msg, err := uc.messages.AddMessage(ctx, chatID, username, content)
	if err != nil {
		return domain.PostedMessage{}, err
	}

	if err := uc.chatRepo.TouchChat(ctx, chatID, msg.TimePosted); err != nil {
		return domain.PostedMessage{}, err
	}

	return msg, nil
}

// ChatMessages returns a page of chat history for a participant.
func (uc *ChatUseCase) ChatMessages(ctx context.Context, chatID int64, username string, startPoint, count int64) ([]domain.PostedMessage, error) {
	if err := uc.requireParticipant(ctx, chatID, username); err != nil {
		return nil, err
	}
	return uc.messages.GetChatMessages(ctx, chatID, startPoint, count)
}

// ChatMessagesCount returns the message count of a chat for a participant.
func (uc *ChatUseCase) ChatMessagesCount(ctx context.Context, chatID int64, username string) (int64, error) {
	if err := uc.requireParticipant(ctx, chatID, username); err != nil {
		return 0, err
	}
	return uc.messages.GetChatMessagesCount(ctx, chatID)
}

// MarkRead sets the read flag of a message for a participant of its chat.
func (uc *ChatUseCase) MarkRead(ctx context.Context, messageID int64, username string) (bool, error) {
	msg, err := uc.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return false, err
	}

	if err := uc.requireParticipant(ctx, msg.ChatID, username); err != nil {
		return false, err
	}

	return uc.messages.MarkMessageAsRead(ctx, messageID)
}

// SetRight stores an allow or deny entry for a right in a chat. An empty
// username targets the chat-wide default. Only holders of the invite right may
// manage rights.
func (uc *ChatUseCase) SetRight(ctx context.Context, chatID int64, requester, username, right string, state bool) error {
	if !domain.IsKnownRight(right) {
		return domain.ErrUnknownRight
	}
	if err := uc.requireRight(ctx, chatID, requester, domain.RightInviteUser); err != nil {
		return err
	}

	_, found, err := uc.aclRepo.GetRight(ctx, chatID, right, username)
	if err != nil {
		return err
	}
	if found {
		return uc.aclRepo.SetRight(ctx, chatID, right, state, username)
	}
	return uc.aclRepo.AddRight(ctx, chatID, right, state, username)
}

// ClearRight deletes a stored entry so the fallback applies again: the chat
// default for a per-user entry, allow-by-default for the chat default itself.
func (uc *ChatUseCase) ClearRight(ctx context.Context, chatID int64, requester, username, right string) error {
	if !domain.IsKnownRight(right) {
		return domain.ErrUnknownRight
	}
	if err := uc.requireRight(ctx, chatID, requester, domain.RightInviteUser); err != nil {
		return err
	}

	deleted, err := uc.aclRepo.DeleteRight(ctx, chatID, right, username)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrRightNotFound
	}
	return nil
}

// UserChats lists the chats a user participates in, ordered by update time.
func (uc *ChatUseCase) UserChats(ctx context.Context, username string, startPoint, count int64) ([]int64, error) {
	return uc.chatRepo.ChatsByUser(ctx, username, startPoint, count)
}

// requireRight checks participation, then resolves the named right: a
// per-user entry wins over the chat default; with neither stored the
// operation is allowed.
func (uc *ChatUseCase) requireRight(ctx context.Context, chatID int64, username, right string) error {
	if err := uc.requireParticipant(ctx, chatID, username); err != nil {
		return err
	}

	state, found, err := uc.aclRepo.GetRight(ctx, chatID, right, username)
	if err != nil {
		return err
	}
	if !found {
		state, found, err = uc.aclRepo.GetRight(ctx, chatID, right, "")
		if err != nil {
			return err
		}
	}
	if found && !state {
		return domain.ErrForbidden
	}

	return nil
}

func (uc *ChatUseCase) requireParticipant(ctx context.Context, chatID int64, username string) error {
	ok, err := uc.chatRepo.IsParticipant(ctx, chatID, username)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	return nil
}
