package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation represents a chat between exactly two users. The pair is
// normalized on creation (UserA < UserB lexically) so the same two users
// always map to one conversation, and it is immutable afterwards.
type Conversation struct {
	ID              uuid.UUID  `json:"id"`
	UserA           uuid.UUID  `json:"user_a"`
	UserB           uuid.UUID  `json:"user_b"`
	CreatedAt       time.Time  `json:"created_at"`
	LastMessageText string     `json:"last_message_text,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`

	// Filled per viewer after load, never persisted.
	Other       *User `json:"other,omitempty"`
	UnreadCount int   `json:"unread_count"`
}

// OtherParticipant returns the participant that is not the viewer.
func (c Conversation) OtherParticipant(viewer uuid.UUID) uuid.UUID {
	if c.UserA == viewer {
		return c.UserB
	}
	return c.UserA
}

// HasParticipant reports whether the given user belongs to the conversation.
func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.UserA == userID || c.UserB == userID
}

// ChatMessage represents one message in a conversation. IsMine is derived at
// read time by comparing the sender against the viewing user.
type ChatMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Text           string    `json:"text"`
	IsRead         bool      `json:"is_read"`
	IsMine         bool      `json:"is_mine"`
	CreatedAt      time.Time `json:"created_at"`
}

// NormalizePair orders two user IDs so (a, b) and (b, a) address the same
// conversation row.
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
