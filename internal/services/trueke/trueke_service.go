package trueke

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/models"
	"github.com/truekeo/truekeo-api/internal/store"
)

// TruekeService owns the exchange lifecycle: creation, hydration-backed
// reads, status transitions and the item reservations that go with them.
type TruekeService struct {
	truekes  store.TruekeStore
	items    store.ItemStore
	hydrator *Hydrator
	log      *zap.Logger
}

// NewTruekeService wires the service over its stores.
func NewTruekeService(truekes store.TruekeStore, items store.ItemStore, hydrator *Hydrator, log *zap.Logger) *TruekeService {
	return &TruekeService{truekes: truekes, items: items, hydrator: hydrator, log: log}
}

// CreateInput carries the fields of a new trueke proposal.
type CreateInput struct {
	Title       string
	Description string
	HostItemID  uuid.UUID
	Location    *models.GeoPoint
	ScheduledAt *time.Time
}

// UpdateInput carries the new state of an open trueke's editable fields.
// The update is a full replacement: an empty description or a nil location
// or schedule clears the stored value.
type UpdateInput struct {
	Title       string
	Description string
	Location    *models.GeoPoint
	ScheduledAt *time.Time
}

// Create validates the proposal and persists it with status OPEN. The host
// item must belong to the caller and still be available. Nothing is written
// when the caller is not authenticated.
func (s *TruekeService) Create(ctx context.Context, callerID uuid.UUID, in CreateInput) (*models.Trueke, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if in.Title == "" {
		return nil, models.Preconditionf("title is required")
	}

	item, err := s.items.GetByID(ctx, in.HostItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != callerID {
		return nil, models.ErrForbidden
	}
	if item.Status != models.ItemAvailable {
		return nil, models.Preconditionf("item is %s, only AVAILABLE items can be offered", item.Status)
	}

	row := &store.TruekeRow{
		Title:       in.Title,
		HostUserID:  callerID,
		HostItemID:  in.HostItemID,
		ScheduledAt: in.ScheduledAt,
		Status:      string(models.TruekeOpen),
	}
	if in.Description != "" {
		row.Description = &in.Description
	}
	if in.Location != nil {
		row.Latitude = &in.Location.Latitude
		row.Longitude = &in.Location.Longitude
	}

	if err := s.truekes.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("creating trueke: %w", err)
	}
	return s.hydrator.Hydrate(ctx, *row)
}

// Get returns one hydrated trueke. Broken host references read as not-found.
func (s *TruekeService) Get(ctx context.Context, id uuid.UUID) (*models.Trueke, error) {
	row, err := s.truekes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.hydrator.Hydrate(ctx, *row)
}

// ListOpen returns the hydrated public feed of open truekes.
func (s *TruekeService) ListOpen(ctx context.Context, limit, offset int) ([]models.Trueke, error) {
	rows, err := s.truekes.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.hydrator.HydrateBatch(ctx, rows), nil
}

// ListMine returns the caller's truekes, hosted or taken, hydrated.
func (s *TruekeService) ListMine(ctx context.Context, callerID uuid.UUID) ([]models.Trueke, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	rows, err := s.truekes.ListByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.hydrator.HydrateBatch(ctx, rows), nil
}

// MySummary returns the caller's truekes plus the tab the client should land
// on, so the screen opens somewhere useful without a visible jump.
func (s *TruekeService) MySummary(ctx context.Context, callerID uuid.UUID) ([]models.Trueke, models.TruekeStatus, error) {
	truekes, err := s.ListMine(ctx, callerID)
	if err != nil {
		return nil, "", err
	}
	return truekes, DefaultTab(truekes), nil
}

// Update replaces an open trueke's editable details. Only the host may
// edit, and only while the trueke is OPEN. Optional fields absent from the
// input are cleared, so a host can drop a location or scheduled date again.
func (s *TruekeService) Update(ctx context.Context, callerID, id uuid.UUID, in UpdateInput) (*models.Trueke, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}
	if in.Title == "" {
		return nil, models.Preconditionf("title is required")
	}

	row, err := s.truekes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.HostUserID != callerID {
		return nil, models.ErrForbidden
	}
	if row.Status != string(models.TruekeOpen) {
		return nil, models.Preconditionf("trueke is %s, only OPEN truekes can be edited", row.Status)
	}

	row.Title = in.Title
	row.Description = nil
	if in.Description != "" {
		row.Description = &in.Description
	}
	row.Latitude, row.Longitude = nil, nil
	if in.Location != nil {
		row.Latitude = &in.Location.Latitude
		row.Longitude = &in.Location.Longitude
	}
	row.ScheduledAt = in.ScheduledAt

	if err := s.truekes.UpdateDetails(ctx, row); err != nil {
		return nil, err
	}
	return s.hydrator.Hydrate(ctx, *row)
}

// Accept moves an OPEN trueke to RESERVED: the caller becomes the taker with
// one of their available items, and both items are reserved.
func (s *TruekeService) Accept(ctx context.Context, callerID, id, takerItemID uuid.UUID) (*models.Trueke, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	row, err := s.truekes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.HostUserID == callerID {
		return nil, models.Preconditionf("cannot accept your own trueke")
	}
	current, err := models.ParseTruekeStatus(row.Status)
	if err != nil {
		return nil, err
	}
	if !current.CanTransitionTo(models.TruekeReserved) {
		return nil, models.Preconditionf("trueke is %s, only OPEN truekes can be accepted", current)
	}

	takerItem, err := s.items.GetByID(ctx, takerItemID)
	if err != nil {
		return nil, err
	}
	if takerItem.UserID != callerID {
		return nil, models.ErrForbidden
	}
	if takerItem.Status != models.ItemAvailable {
		return nil, models.Preconditionf("item is %s, only AVAILABLE items can be offered", takerItem.Status)
	}

	if err := s.truekes.UpdateStatus(ctx, id, current, models.TruekeReserved, &callerID, &takerItemID); err != nil {
		return nil, err
	}
	s.reserveItems(ctx, models.ItemReserved, row.HostItemID, takerItemID)

	row.Status = string(models.TruekeReserved)
	row.TakerUserID = &callerID
	row.TakerItemID = &takerItemID
	return s.hydrator.Hydrate(ctx, *row)
}

// Complete moves a RESERVED trueke to COMPLETED and marks both items
// exchanged. Host only.
func (s *TruekeService) Complete(ctx context.Context, callerID, id uuid.UUID) (*models.Trueke, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	row, err := s.truekes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.HostUserID != callerID {
		return nil, models.ErrForbidden
	}
	current, err := models.ParseTruekeStatus(row.Status)
	if err != nil {
		return nil, err
	}
	if !current.CanTransitionTo(models.TruekeCompleted) {
		return nil, models.Preconditionf("trueke is %s, only RESERVED truekes can be completed", current)
	}

	if err := s.truekes.UpdateStatus(ctx, id, current, models.TruekeCompleted, nil, nil); err != nil {
		return nil, err
	}
	itemIDs := []uuid.UUID{row.HostItemID}
	if row.TakerItemID != nil {
		itemIDs = append(itemIDs, *row.TakerItemID)
	}
	s.reserveItems(ctx, models.ItemExchanged, itemIDs...)

	row.Status = string(models.TruekeCompleted)
	return s.hydrator.Hydrate(ctx, *row)
}

// Cancel moves an OPEN or RESERVED trueke to CANCELLED and releases any
// reserved items back to AVAILABLE. The host may always cancel; the taker
// may back out of a reservation.
func (s *TruekeService) Cancel(ctx context.Context, callerID, id uuid.UUID) (*models.Trueke, error) {
	if callerID == uuid.Nil {
		return nil, models.ErrNotAuthenticated
	}

	row, err := s.truekes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	isHost := row.HostUserID == callerID
	isTaker := row.TakerUserID != nil && *row.TakerUserID == callerID
	if !isHost && !isTaker {
		return nil, models.ErrForbidden
	}
	current, err := models.ParseTruekeStatus(row.Status)
	if err != nil {
		return nil, err
	}
	if !current.CanTransitionTo(models.TruekeCancelled) {
		return nil, models.Preconditionf("trueke is %s and can no longer be cancelled", current)
	}

	if err := s.truekes.UpdateStatus(ctx, id, current, models.TruekeCancelled, nil, nil); err != nil {
		return nil, err
	}
	if current == models.TruekeReserved {
		itemIDs := []uuid.UUID{row.HostItemID}
		if row.TakerItemID != nil {
			itemIDs = append(itemIDs, *row.TakerItemID)
		}
		s.reserveItems(ctx, models.ItemAvailable, itemIDs...)
	}

	row.Status = string(models.TruekeCancelled)
	return s.hydrator.Hydrate(ctx, *row)
}

// Delete removes a trueke that never left OPEN. Host only.
func (s *TruekeService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID == uuid.Nil {
		return models.ErrNotAuthenticated
	}

	row, err := s.truekes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row.HostUserID != callerID {
		return models.ErrForbidden
	}
	if row.Status != string(models.TruekeOpen) {
		return models.Preconditionf("trueke is %s, only OPEN truekes can be deleted", row.Status)
	}

	return s.truekes.Delete(ctx, id)
}

// reserveItems applies an item status to each ID, logging failures instead
// of failing the already-committed trueke transition.
func (s *TruekeService) reserveItems(ctx context.Context, status models.ItemStatus, ids ...uuid.UUID) {
	for _, id := range ids {
		if err := s.items.UpdateStatus(ctx, id, status); err != nil {
			s.log.Warn("item status update failed after trueke transition",
				zap.String("item_id", id.String()),
				zap.String("status", string(status)),
				zap.Error(err))
		}
	}
}
