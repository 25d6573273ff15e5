package chat

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the chat endpoints. Everything here requires auth.
func (s *ChatService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/chats")
	api.Use(authMiddleware)

	api.Post("/", s.OpenConversationHandler)
	api.Get("/", s.ListConversationsHandler)
	api.Get("/:id/messages", s.MessagesHandler)
	api.Post("/:id/messages", s.SendMessageHandler)
}
