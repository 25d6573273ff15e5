package geo

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the geocoding endpoints.
func (s *GeoService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/geo")
	api.Use(authMiddleware)

	api.Get("/search", s.SearchHandler)
	api.Get("/reverse", s.ReverseHandler)
}
