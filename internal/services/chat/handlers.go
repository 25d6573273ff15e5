package chat

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/truekeo/truekeo-api/internal/httperr"
)

type openConversationRequest struct {
	UserID string `json:"user_id"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func callerID(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("userID").(uuid.UUID)
	return id
}

// OpenConversationHandler finds or creates the conversation with another user.
func (s *ChatService) OpenConversationHandler(c fiber.Ctx) error {
	var req openConversationRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user_id"})
	}

	conv, err := s.OpenConversation(c.Context(), callerID(c), otherID)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(conv)
}

// ListConversationsHandler returns the caller's conversations.
func (s *ChatService) ListConversationsHandler(c fiber.Ctx) error {
	convs, err := s.ListConversations(c.Context(), callerID(c))
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

// MessagesHandler returns one page of messages, marking them read.
func (s *ChatService) MessagesHandler(c fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var before *uuid.UUID
	if raw := c.Query("before"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid before cursor"})
		}
		before = &id
	}

	msgs, err := s.Messages(c.Context(), callerID(c), conversationID, before)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// SendMessageHandler appends a message to the conversation.
func (s *ChatService) SendMessageHandler(c fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req sendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	msg, err := s.Send(c.Context(), callerID(c), conversationID, req.Text)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
