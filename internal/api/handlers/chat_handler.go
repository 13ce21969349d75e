package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	chatapp "chat_backend_service/internal/chat/app"
	chatdomain "chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg/middlewares"
)

// ChatHandler 處理聊天相關的 HTTP 請求
type ChatHandler struct {
	Chats *chatapp.ChatUseCase
}

// NewChatHandler create a ChatHandler
func NewChatHandler(chats *chatapp.ChatUseCase) *ChatHandler {
	return &ChatHandler{Chats: chats}
}

func requestUsername(c *fiber.Ctx) (string, error) {
	username, ok := c.Locals(middlewares.TokenUsername).(string)
	if !ok || username == "" {
		return "", fmt.Errorf("c.Locals(%s) is nil", middlewares.TokenUsername)
	}
	return username, nil
}

func chatErrorStatus(err error) int {
	var formatErr chatdomain.MessageFormatError
	switch {
	case errors.As(err, &formatErr),
		errors.Is(err, chatdomain.ErrInvalidChatID),
		errors.Is(err, chatdomain.ErrInvalidMessageID),
		errors.Is(err, chatdomain.ErrInvalidChatIndex),
		errors.Is(err, chatdomain.ErrUnknownRight):
		return fiber.StatusBadRequest
	case errors.Is(err, chatdomain.ErrMessageNotFound),
		errors.Is(err, chatdomain.ErrChatNotFound),
		errors.Is(err, chatdomain.ErrRightNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, chatdomain.ErrNotParticipant),
		errors.Is(err, chatdomain.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateChat 建立聊天室，建立者自動成為參與者
func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	chatID, err := h.Chats.CreateChat(c.Context(), username)
	if err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"chat_id": chatID})
}

// AddParticipant 邀請用戶加入聊天室
func (h *ChatHandler) AddParticipant(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	type request struct {
		ChatID   int64  `json:"chat_id"`
		Username string `json:"username"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.Chats.AddParticipant(c.Context(), req.ChatID, username, req.Username); err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "participant added"})
}

// LeaveChat 離開聊天室
func (h *ChatHandler) LeaveChat(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	chatID, err := strconv.ParseInt(c.Params("chatID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}

	if err := h.Chats.RemoveParticipant(c.Context(), chatID, username); err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "left chat"})
}

// SetRight 設定聊天室權限
func (h *ChatHandler) SetRight(c *fiber.Ctx) error {
	requester, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	type request struct {
		ChatID   int64  `json:"chat_id"`
		Username string `json:"username"`
		Right    string `json:"right"`
		State    bool   `json:"state"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.Chats.SetRight(c.Context(), req.ChatID, requester, req.Username, req.Right, req.State); err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "right stored"})
}

// ClearRight 清除聊天室權限
func (h *ChatHandler) ClearRight(c *fiber.Ctx) error {
	requester, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	type request struct {
		ChatID   int64  `json:"chat_id"`
		Username string `json:"username"`
		Right    string `json:"right"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.Chats.ClearRight(c.Context(), req.ChatID, requester, req.Username, req.Right); err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "right cleared"})
}

// PostMessage 發送訊息
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	type request struct {
		ChatID  int64  `json:"chat_id"`
		Content string `json:"content"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	msg, err := h.Chats.PostMessage(c.Context(), req.ChatID, username, req.Content)
	if err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(msg)
}

// GetMessages 取得訊息分頁
// start = -2 returns the whole history, start = -1 the last `count` entries,
// any positive value a page beginning at that chat index.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	chatID, err := strconv.ParseInt(c.Params("chatID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}

	start := c.QueryInt("start", int(chatdomain.SelectAll))
	count := c.QueryInt("count", 1)

	messages, err := h.Chats.ChatMessages(c.Context(), chatID, username, int64(start), int64(count))
	if err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"messages": messages})
}

// GetMessagesCount 取得聊天室訊息數
func (h *ChatHandler) GetMessagesCount(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	chatID, err := strconv.ParseInt(c.Params("chatID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}

	count, err := h.Chats.ChatMessagesCount(c.Context(), chatID, username)
	if err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"count": count})
}

// MarkRead 將訊息標記為已讀
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	messageID, err := strconv.ParseInt(c.Params("messageID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid message id"})
	}

	changed, err := h.Chats.MarkRead(c.Context(), messageID, username)
	if err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"changed": changed})
}

// GetUserChats 列出用戶參與的聊天室
func (h *ChatHandler) GetUserChats(c *fiber.Ctx) error {
	username, err := requestUsername(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	start := c.QueryInt("start", int(chatdomain.SelectAll))
	count := c.QueryInt("count", 1)

	chatIDs, err := h.Chats.UserChats(c.Context(), username, int64(start), int64(count))
	if err != nil {
		return c.Status(chatErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"chat_ids": chatIDs})
}
