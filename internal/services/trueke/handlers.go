package trueke

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/truekeo/truekeo-api/internal/httperr"
	"github.com/truekeo/truekeo-api/internal/models"
)

// truekeRequest is the JSON body shared by create and update.
type truekeRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	HostItemID  string     `json:"host_item_id"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (r truekeRequest) location() *models.GeoPoint {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &models.GeoPoint{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

func callerID(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("userID").(uuid.UUID)
	return id
}

// CreateTrueke handles POST /api/truekes.
func (s *TruekeService) CreateTrueke(c fiber.Ctx) error {
	var req truekeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	hostItemID, err := uuid.Parse(req.HostItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid host item ID"})
	}

	t, err := s.Create(c.Context(), callerID(c), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		HostItemID:  hostItemID,
		Location:    req.location(),
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"trueke": t})
}

// GetTrueke handles GET /api/truekes/:id.
func (s *TruekeService) GetTrueke(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trueke ID"})
	}

	t, err := s.Get(c.Context(), id)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"trueke": t})
}

// ListOpenTruekes handles GET /api/truekes (the public feed).
func (s *TruekeService) ListOpenTruekes(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	truekes, err := s.ListOpen(c.Context(), limit, offset)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"truekes": truekes, "count": len(truekes)})
}

// ListMyTruekes handles GET /api/truekes/my.
func (s *TruekeService) ListMyTruekes(c fiber.Ctx) error {
	truekes, err := s.ListMine(c.Context(), callerID(c))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"truekes": truekes, "count": len(truekes)})
}

// MyTruekesSummary handles GET /api/truekes/my/summary, returning the list
// together with the tab the client should open on.
func (s *TruekeService) MyTruekesSummary(c fiber.Ctx) error {
	truekes, tab, err := s.MySummary(c.Context(), callerID(c))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"truekes":     truekes,
		"count":       len(truekes),
		"default_tab": tab,
	})
}

// UpdateTrueke handles PUT /api/truekes/:id.
func (s *TruekeService) UpdateTrueke(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trueke ID"})
	}
	var req truekeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	t, err := s.Update(c.Context(), callerID(c), id, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.location(),
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"trueke": t})
}

// UpdateTruekeStatus handles PUT /api/truekes/:id/status.
func (s *TruekeService) UpdateTruekeStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trueke ID"})
	}

	var req struct {
		Status      string `json:"status"`
		TakerItemID string `json:"taker_item_id"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	status, err := models.ParseTruekeStatus(req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	var t *models.Trueke
	switch status {
	case models.TruekeReserved:
		takerItemID, err := uuid.Parse(req.TakerItemID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid taker item ID"})
		}
		t, err = s.Accept(c.Context(), callerID(c), id, takerItemID)
		if err != nil {
			return httperr.Respond(c, err)
		}
	case models.TruekeCompleted:
		t, err = s.Complete(c.Context(), callerID(c), id)
		if err != nil {
			return httperr.Respond(c, err)
		}
	case models.TruekeCancelled:
		t, err = s.Cancel(c.Context(), callerID(c), id)
		if err != nil {
			return httperr.Respond(c, err)
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "OPEN is not a reachable target status"})
	}

	return c.JSON(fiber.Map{"trueke": t})
}

// DeleteTrueke handles DELETE /api/truekes/:id.
func (s *TruekeService) DeleteTrueke(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trueke ID"})
	}

	if err := s.Delete(c.Context(), callerID(c), id); err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
