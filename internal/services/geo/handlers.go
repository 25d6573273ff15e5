package geo

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// SearchHandler returns place suggestions for the q query parameter.
func (s *GeoService) SearchHandler(c fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing q parameter"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "5"))
	suggestions := s.Search(c.Context(), query, limit)
	return c.JSON(fiber.Map{"suggestions": suggestions})
}

// ReverseHandler resolves lat/lng query parameters to a place label.
func (s *GeoService) ReverseHandler(c fiber.Ctx) error {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lat/lng"})
	}

	fallback := c.Query("fallback")
	if fallback == "" {
		fallback = c.Query("lat") + ", " + c.Query("lng")
	}

	label := s.ReverseLabel(c.Context(), lat, lng, fallback)
	return c.JSON(fiber.Map{"label": label})
}
