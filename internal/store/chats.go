package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/truekeo/truekeo-api/internal/models"
)

type chatStore struct {
	pool *pgxpool.Pool
}

func (s *chatStore) FindOrCreateConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	first, second := models.NormalizePair(a, b)

	var c models.Conversation
	err := s.pool.QueryRow(ctx, `
		INSERT INTO conversations (user_a, user_b)
		VALUES ($1, $2)
		ON CONFLICT (user_a, user_b) DO UPDATE SET user_a = EXCLUDED.user_a
		RETURNING id, user_a, user_b, created_at, COALESCE(last_message_text, ''), last_message_time
	`, first, second).Scan(&c.ID, &c.UserA, &c.UserB, &c.CreatedAt,
		&c.LastMessageText, &c.LastMessageTime)
	if err != nil {
		return nil, fmt.Errorf("finding or creating conversation: %w", err)
	}
	return &c, nil
}

func (s *chatStore) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var c models.Conversation
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_a, user_b, created_at, COALESCE(last_message_text, ''), last_message_time
		FROM conversations WHERE id = $1
	`, id).Scan(&c.ID, &c.UserA, &c.UserB, &c.CreatedAt,
		&c.LastMessageText, &c.LastMessageTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	return &c, nil
}

func (s *chatStore) ListConversations(ctx context.Context, viewer uuid.UUID) ([]models.Conversation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.user_a, c.user_b, c.created_at,
		       COALESCE(c.last_message_text, ''), c.last_message_time,
		       COUNT(m.id) FILTER (WHERE m.sender_id != $1 AND m.is_read = FALSE) AS unread
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.user_a = $1 OR c.user_b = $1
		GROUP BY c.id
		ORDER BY c.last_message_time DESC NULLS LAST, c.created_at DESC
	`, viewer)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserA, &c.UserB, &c.CreatedAt,
			&c.LastMessageText, &c.LastMessageTime, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *chatStore) ListMessages(ctx context.Context, conversationID uuid.UUID, before *uuid.UUID, limit int) ([]models.ChatMessage, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if before != nil {
		rows, err = s.pool.Query(ctx, `
			SELECT id, conversation_id, sender_id, text, is_read, created_at
			FROM messages
			WHERE conversation_id = $1
			  AND created_at < (SELECT created_at FROM messages WHERE id = $2)
			ORDER BY created_at DESC
			LIMIT $3
		`, conversationID, before, limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, conversation_id, sender_id, text, is_read, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, conversationID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text,
			&m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *chatStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at
	`, msg.ConversationID, msg.SenderID, msg.Text).
		Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET last_message_text = $2, last_message_time = $3
		WHERE id = $1
	`, msg.ConversationID, msg.Text, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("updating conversation: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *chatStore) MarkRead(ctx context.Context, conversationID, reader uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id != $2 AND is_read = FALSE
	`, conversationID, reader)
	if err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}
	return nil
}
