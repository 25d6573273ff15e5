// Package httperr maps domain errors onto HTTP failure responses so no raw
// provider or database error ever reaches a client.
package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/truekeo/truekeo-api/internal/models"
)

// Respond writes the JSON failure response matching err.
func Respond(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, models.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case models.IsPrecondition(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
}
