package trueke

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the trueke endpoints. The public feed and single
// reads stay open; everything mutating sits behind auth.
func (s *TruekeService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Get("/api/truekes", s.ListOpenTruekes)

	api := app.Group("/api/truekes")
	api.Use(authMiddleware)

	api.Post("/", s.CreateTrueke)
	api.Get("/my", s.ListMyTruekes)
	api.Get("/my/summary", s.MyTruekesSummary)
	api.Get("/:id", s.GetTrueke)
	api.Put("/:id", s.UpdateTrueke)
	api.Put("/:id/status", s.UpdateTruekeStatus)
	api.Delete("/:id", s.DeleteTrueke)
}
