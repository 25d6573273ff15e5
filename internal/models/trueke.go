package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TruekeStatus tracks an exchange through its lifecycle.
type TruekeStatus string

const (
	TruekeOpen      TruekeStatus = "OPEN"
	TruekeReserved  TruekeStatus = "RESERVED"
	TruekeCompleted TruekeStatus = "COMPLETED"
	TruekeCancelled TruekeStatus = "CANCELLED"
)

// ParseTruekeStatus maps a stored string to its status value, rejecting
// anything outside the closed set.
func ParseTruekeStatus(s string) (TruekeStatus, error) {
	switch TruekeStatus(s) {
	case TruekeOpen, TruekeReserved, TruekeCompleted, TruekeCancelled:
		return TruekeStatus(s), nil
	}
	return "", fmt.Errorf("unknown trueke status %q", s)
}

// CanTransitionTo enforces OPEN -> RESERVED -> COMPLETED, with CANCELLED
// reachable from OPEN or RESERVED.
func (s TruekeStatus) CanTransitionTo(next TruekeStatus) bool {
	switch s {
	case TruekeOpen:
		return next == TruekeReserved || next == TruekeCancelled
	case TruekeReserved:
		return next == TruekeCompleted || next == TruekeCancelled
	}
	return false
}

// GeoPoint is an optional meeting location attached to a trueke.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Trueke represents a proposed or completed item-for-item exchange. The host
// proposes it with their item; the taker is the counter-party who accepts
// with their own. Host references are always populated on a hydrated value;
// taker references stay nil until a counter-offer is accepted.
type Trueke struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	HostUser    *User        `json:"host_user"`
	HostItem    *Item        `json:"host_item"`
	TakerUser   *User        `json:"taker_user,omitempty"`
	TakerItem   *Item        `json:"taker_item,omitempty"`
	Location    *GeoPoint    `json:"location,omitempty"`
	ScheduledAt *time.Time   `json:"scheduled_at,omitempty"`
	Status      TruekeStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
