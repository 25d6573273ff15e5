package storage

import (
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/truekeo/truekeo-api/internal/httperr"
)

func callerID(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("userID").(uuid.UUID)
	return id
}

// readUpload pulls the "file" part out of the multipart form.
func readUpload(c fiber.Ctx) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
}

// UploadAvatarHandler accepts a multipart image and sets it as the caller's
// avatar.
func (s *StorageService) UploadAvatarHandler(c fiber.Ctx) error {
	data, err := readUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing file"})
	}

	url, err := s.UploadAvatar(c.Context(), callerID(c), data)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// UploadItemPhotoHandler accepts a multipart image and appends it to the
// item's gallery.
func (s *StorageService) UploadItemPhotoHandler(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	data, err := readUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing file"})
	}

	url, err := s.UploadItemPhoto(c.Context(), callerID(c), itemID, data)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}
