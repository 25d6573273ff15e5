package item

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/store"
)

// ItemService owns item CRUD and the item status lifecycle.
type ItemService struct {
	items store.ItemStore
	log   *zap.Logger
}

// NewItemService wires the service over its store.
func NewItemService(items store.ItemStore, log *zap.Logger) *ItemService {
	return &ItemService{items: items, log: log}
}

// CreateInput carries the fields of a new item.
type CreateInput struct {
	Name      string
	Details   string
	Brand     string
	Condition string
	ImageURLs []string
}

// Create persists a new AVAILABLE item owned by the caller. The condition
// must be one of the closed set; anything else is rejected.
func (s *ItemService) Create(ctx context.Context, callerID uuid.UUID, in CreateInput) (*models.Item, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if in.Name == "" {
		return nil, models.Preconditionf("name is required")
	}
	condition, err := models.ParseItemCondition(in.Condition)
	if err != nil {
		return nil, models.Preconditionf("invalid condition %q", in.Condition)
	}

	item := &models.Item{
		UserID:    callerID,
		Name:      in.Name,
		Details:   in.Details,
		Brand:     in.Brand,
		Condition: condition,
		Status:    models.ItemAvailable,
		ImageURLs: in.ImageURLs,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	return item, nil
}

// Get returns one item by ID.
func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.items.GetByID(ctx, id)
}

// ListByUser returns a user's items, optionally filtered by status.
func (s *ItemService) ListByUser(ctx context.Context, userID uuid.UUID, status *models.ItemStatus) ([]models.Item, error) {
	return s.items.ListByUser(ctx, userID, status)
}

// UpdateStatus applies a validated lifecycle transition to the caller's item.
func (s *ItemService) UpdateStatus(ctx context.Context, callerID, id uuid.UUID, next models.ItemStatus) (*models.Item, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != callerID {
		return nil, models.ErrForbidden
	}
	if !item.Status.CanTransitionTo(next) {
		return nil, models.Preconditionf("item cannot move from %s to %s", item.Status, next)
	}

	if err := s.items.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	item.Status = next
	return item, nil
}

// Delete removes an item that is still AVAILABLE. Once an item is reserved
// or exchanged it is part of an exchange's history and stays; in that case
// no delete reaches the store.
func (s *ItemService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID == uuid.Nil {
		return models.ErrNotAuthenticated
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != callerID {
		return models.ErrForbidden
	}
	if item.Status != models.ItemAvailable {
		return models.Preconditionf("item is %s, only AVAILABLE items can be deleted", item.Status)
	}

	return s.items.Delete(ctx, id)
}
