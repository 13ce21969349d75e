package router

import (
	"chat_backend_service/internal/api/handlers"
	"chat_backend_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册用户与聊天相关的路由
func RegisterRoutes(app *fiber.App, memberHandler *handlers.MemberHandler, chatHandler *handlers.ChatHandler, tokenSecret []byte, tokenIssuer string) {
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	memberRoutes := app.Group("/member")
	memberRoutes.Post("/register", memberHandler.Register)
	memberRoutes.Post("/login", memberHandler.Login)

	chatRoutes := app.Group("/chat")
	chatRoutes.Use(middlewares.JWTMiddleware(tokenSecret, tokenIssuer))
	chatRoutes.Post("/create", chatHandler.CreateChat)
	chatRoutes.Post("/participant", chatHandler.AddParticipant)
	chatRoutes.Delete("/:chatID/participant", chatHandler.LeaveChat)
	chatRoutes.Post("/right", chatHandler.SetRight)
	chatRoutes.Delete("/right", chatHandler.ClearRight)
	chatRoutes.Post("/message", chatHandler.PostMessage)
	chatRoutes.Post("/message/:messageID/read", chatHandler.MarkRead)
	chatRoutes.Get("/list", chatHandler.GetUserChats)
	chatRoutes.Get("/:chatID/messages", chatHandler.GetMessages)
	chatRoutes.Get("/:chatID/messages/count", chatHandler.GetMessagesCount)
}
