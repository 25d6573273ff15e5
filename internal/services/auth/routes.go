package auth

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the auth endpoints and the profile surface.
func (s *AuthService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/auth/signup", s.SignUpHandler)
	app.Post("/api/auth/login", s.LoginHandler)

	me := app.Group("/api/me")
	me.Use(authMiddleware)
	me.Get("/", s.ProfileHandler)
	me.Put("/", s.UpdateProfileHandler)
}
