package item

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the item endpoints.
func (s *ItemService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Get("/api/users/:id/items", s.ListUserItems)

	api := app.Group("/api/items")
	api.Use(authMiddleware)

	api.Post("/", s.CreateItem)
	api.Get("/my", s.ListMyItems)
	api.Get("/:id", s.GetItem)
	api.Put("/:id/status", s.UpdateItemStatus)
	api.Delete("/:id", s.DeleteItem)
}
