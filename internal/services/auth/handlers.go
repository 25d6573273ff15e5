package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/truekeo/truekeo-api/internal/httperr"
)

func callerID(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("userID").(uuid.UUID)
	return id
}

// SignUpHandler handles POST /api/auth/signup.
func (s *AuthService) SignUpHandler(c fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, token, err := s.SignUp(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token, "user": user})
}

// LoginHandler handles POST /api/auth/login. The login field accepts an
// email address or a username.
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, token, err := s.Login(c.Context(), req.Login, req.Password)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

// ProfileHandler handles GET /api/me.
func (s *AuthService) ProfileHandler(c fiber.Ctx) error {
	user, err := s.Profile(c.Context(), callerID(c))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateProfileHandler handles PUT /api/me.
func (s *AuthService) UpdateProfileHandler(c fiber.Ctx) error {
	var req struct {
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := s.UpdateProfile(c.Context(), callerID(c), req.Username, req.AvatarURL)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
