package chat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/metrics"
	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/store"
	"github.com/truekeo/truekeo-api/internal/ws"
)

const messagePageSize = 50

// ChatService owns two-party conversations and their messages.
type ChatService struct {
	chats   store.ChatStore
	users   store.UserStore
	manager *ws.Manager
	log     *zap.Logger
}

// NewChatService wires the service over its stores and the push manager.
func NewChatService(chats store.ChatStore, users store.UserStore, manager *ws.Manager, log *zap.Logger) *ChatService {
	return &ChatService{chats: chats, users: users, manager: manager, log: log}
}

// OpenConversation finds or lazily creates the conversation between the
// caller and another user.
func (s *ChatService) OpenConversation(ctx context.Context, callerID, otherID uuid.UUID) (*models.Conversation, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if otherID == callerID {
		return nil, models.Preconditionf("cannot open a conversation with yourself")
	}

	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	conv, err := s.chats.FindOrCreateConversation(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}
	public := other.Public()
	conv.Other = &public
	return conv, nil
}

// ListConversations returns the caller's conversations with the other
// participant's profile attached. A conversation whose counter-party cannot
// be resolved is skipped rather than rendered half-empty.
func (s *ChatService) ListConversations(ctx context.Context, callerID uuid.UUID) ([]models.Conversation, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	convs, err := s.chats.ListConversations(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Conversation, 0, len(convs))
	for _, conv := range convs {
		other, err := s.users.GetByID(ctx, conv.OtherParticipant(callerID))
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				s.log.Warn("conversation participant lookup failed",
					zap.String("conversation_id", conv.ID.String()), zap.Error(err))
			}
			continue
		}
		public := other.Public()
		conv.Other = &public
		out = append(out, conv)
	}
	return out, nil
}

// Messages returns one page of a conversation's messages, newest first,
// with IsMine derived for the caller. Reading marks the counter-party's
// messages as read.
func (s *ChatService) Messages(ctx context.Context, callerID, conversationID uuid.UUID, before *uuid.UUID) ([]models.ChatMessage, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	conv, err := s.chats.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, models.ErrForbidden
	}

	msgs, err := s.chats.ListMessages(ctx, conversationID, before, messagePageSize)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].IsMine = msgs[i].SenderID == callerID
	}

	if err := s.chats.MarkRead(ctx, conversationID, callerID); err != nil {
		s.log.Warn("marking messages read failed",
			zap.String("conversation_id", conversationID.String()), zap.Error(err))
	} else if s.manager != nil {
		// Let the sender's open clients flip their read receipts.
		s.manager.SendToUser(conv.OtherParticipant(callerID), ws.Event{
			Type:           ws.EventMessageRead,
			ConversationID: conversationID.String(),
		})
	}
	return msgs, nil
}

// Send appends a message to a conversation the caller belongs to and pushes
// it to the other participant's live connections.
func (s *ChatService) Send(ctx context.Context, callerID, conversationID uuid.UUID, text string) (*models.ChatMessage, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if text == "" {
		return nil, models.Preconditionf("message text is required")
	}

	conv, err := s.chats.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, models.ErrForbidden
	}

	msg := &models.ChatMessage{
		ConversationID: conversationID,
		SenderID:       callerID,
		Text:           text,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	msg.IsMine = true
	metrics.MessagesSent.Inc()

	s.push(conv.OtherParticipant(callerID), msg)
	return msg, nil
}

// push delivers a new-message event; failure to push never fails the send.
func (s *ChatService) push(recipient uuid.UUID, msg *models.ChatMessage) {
	if s.manager == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.manager.SendToUser(recipient, ws.Event{
		Type:           ws.EventNewMessage,
		ConversationID: msg.ConversationID.String(),
		Payload:        payload,
	})
}
