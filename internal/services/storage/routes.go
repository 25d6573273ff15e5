package storage

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the blob upload endpoints.
func (s *StorageService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/upload")
	api.Use(authMiddleware)

	api.Post("/avatar", s.UploadAvatarHandler)
	api.Post("/items/:id", s.UploadItemPhotoHandler)
}
