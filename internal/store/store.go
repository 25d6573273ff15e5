// Package store contains the Postgres-backed data gateways. Every gateway is
// exposed as an interface so services can be tested against fakes.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/truekeo/truekeo-api/internal/models"
)

// UserStore persists and resolves user accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, avatarURL string) (*models.User, error)
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error
}

// ItemStore persists items scoped to their owning user.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *models.ItemStatus) ([]models.Item, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error
	AppendImageURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TruekeRow is the canonical raw exchange record: reference IDs only, no
// nested objects. The hydrator turns it into a models.Trueke.
type TruekeRow struct {
	ID          uuid.UUID
	Title       string
	Description *string
	HostUserID  uuid.UUID
	HostItemID  uuid.UUID
	TakerUserID *uuid.UUID
	TakerItemID *uuid.UUID
	Latitude    *float64
	Longitude   *float64
	ScheduledAt *time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TruekeStore persists raw trueke records.
type TruekeStore interface {
	Create(ctx context.Context, row *TruekeRow) error
	GetByID(ctx context.Context, id uuid.UUID) (*TruekeRow, error)
	ListOpen(ctx context.Context, limit, offset int) ([]TruekeRow, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]TruekeRow, error)
	UpdateDetails(ctx context.Context, row *TruekeRow) error
	// UpdateStatus swaps from -> to atomically; a row no longer in the from
	// status fails the transition instead of clobbering a concurrent one.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TruekeStatus, takerUserID, takerItemID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChatStore persists conversations and their messages.
type ChatStore interface {
	FindOrCreateConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, viewer uuid.UUID) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID, before *uuid.UUID, limit int) ([]models.ChatMessage, error)
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	MarkRead(ctx context.Context, conversationID, reader uuid.UUID) error
}

// Stores bundles the Postgres gateways built over one shared pool.
type Stores struct {
	Users   UserStore
	Items   ItemStore
	Truekes TruekeStore
	Chats   ChatStore
}

// New wires all gateways over the given pool.
func New(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Users:   &userStore{pool: pool},
		Items:   &itemStore{pool: pool},
		Truekes: &truekeStore{pool: pool},
		Chats:   &chatStore{pool: pool},
	}
}
