package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	memberapp "chat_backend_service/internal/member/app"
	memberdomain "chat_backend_service/internal/member/domain"
	"chat_backend_service/pkg/logger"
	"chat_backend_service/pkg/middlewares"
)

// MemberHandler 處理用戶相關的 HTTP 請求
type MemberHandler struct {
	Members *memberapp.MemberManager
}

// NewMemberHandler create a MemberHandler
func NewMemberHandler(members *memberapp.MemberManager) *MemberHandler {
	return &MemberHandler{Members: members}
}

// Register 註冊新用戶
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	type request struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Register request", zap.String("name", req.Name))

	err := h.Members.Register(c.Context(), memberdomain.User{Name: req.Name, Password: req.Password})
	if err != nil {
		var formatErr memberdomain.UserFormatError
		switch {
		case errors.As(err, &formatErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": formatErr.Error(),
				"code":  formatErr.Code,
			})
		case errors.Is(err, memberdomain.ErrUserAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"message": "register success"})
}

// Login 用戶登入，回傳 48 小時有效的 session token
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Login request", zap.String("name", req.Name))

	tokenStr, err := h.Members.IssueToken(c.Context(), memberdomain.User{Name: req.Name, Password: req.Password})
	if err != nil {
		var formatErr memberdomain.UserFormatError
		switch {
		case errors.As(err, &formatErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": formatErr.Error(),
				"code":  formatErr.Code,
			})
		case errors.Is(err, memberdomain.ErrUserNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	c.Cookie(&fiber.Cookie{Name: middlewares.CookieToken, Value: tokenStr})
	return c.JSON(fiber.Map{"token": tokenStr, "message": "login success"})
}
