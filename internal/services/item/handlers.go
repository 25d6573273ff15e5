package item

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/truekeo/truekeo-api/internal/httperr"
	"github.com/truekeo/truekeo-api/internal/models"
)

func callerID(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("userID").(uuid.UUID)
	return id
}

// CreateItem handles POST /api/items.
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	var req struct {
		Name      string   `json:"name"`
		Details   string   `json:"details"`
		Brand     string   `json:"brand"`
		Condition string   `json:"condition"`
		ImageURLs []string `json:"image_urls"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	item, err := s.Create(c.Context(), callerID(c), CreateInput{
		Name:      req.Name,
		Details:   req.Details,
		Brand:     req.Brand,
		Condition: req.Condition,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

// GetItem handles GET /api/items/:id.
func (s *ItemService) GetItem(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	item, err := s.Get(c.Context(), id)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"item": item})
}

// ListMyItems handles GET /api/items/my.
func (s *ItemService) ListMyItems(c fiber.Ctx) error {
	caller := callerID(c)
	if caller == uuid.Nil {
		return httperr.Respond(c, models.ErrNotAuthenticated)
	}
	return s.listFor(c, caller)
}

// ListUserItems handles GET /api/users/:id/items.
func (s *ItemService) ListUserItems(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	return s.listFor(c, userID)
}

func (s *ItemService) listFor(c fiber.Ctx, userID uuid.UUID) error {
	var status *models.ItemStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseItemStatus(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
		status = &parsed
	}

	items, err := s.ListByUser(c.Context(), userID, status)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// UpdateItemStatus handles PUT /api/items/:id/status.
func (s *ItemService) UpdateItemStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	next, err := models.ParseItemStatus(req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	item, err := s.UpdateStatus(c.Context(), callerID(c), id, next)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"item": item})
}

// DeleteItem handles DELETE /api/items/:id.
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	if err := s.Delete(c.Context(), callerID(c), id); err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
