package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemCondition describes the physical state of an item offered for exchange.
type ItemCondition string

const (
	ConditionNew     ItemCondition = "NEW"
	ConditionLikeNew ItemCondition = "LIKE_NEW"
	ConditionGood    ItemCondition = "GOOD"
	ConditionFair    ItemCondition = "FAIR"
	ConditionPoor    ItemCondition = "POOR"
)

// ParseItemCondition maps a stored string to its condition value. Unknown
// values are rejected with an error instead of silently defaulting, so
// corrupted rows surface in logs rather than masquerading as NEW.
func ParseItemCondition(s string) (ItemCondition, error) {
	switch ItemCondition(s) {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return ItemCondition(s), nil
	}
	return "", fmt.Errorf("unknown item condition %q", s)
}

// ItemStatus tracks an item through its exchange lifecycle.
type ItemStatus string

const (
	ItemAvailable ItemStatus = "AVAILABLE"
	ItemReserved  ItemStatus = "RESERVED"
	ItemExchanged ItemStatus = "EXCHANGED"
)

// ParseItemStatus maps a stored string to its status value, rejecting
// anything outside the closed set.
func ParseItemStatus(s string) (ItemStatus, error) {
	switch ItemStatus(s) {
	case ItemAvailable, ItemReserved, ItemExchanged:
		return ItemStatus(s), nil
	}
	return "", fmt.Errorf("unknown item status %q", s)
}

// CanTransitionTo enforces AVAILABLE -> RESERVED -> EXCHANGED, one step at a
// time. RESERVED may also roll back to AVAILABLE when a trueke is cancelled.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	switch s {
	case ItemAvailable:
		return next == ItemReserved
	case ItemReserved:
		return next == ItemExchanged || next == ItemAvailable
	}
	return false
}

// Item represents a physical good offered by a user for bartering.
type Item struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Name      string        `json:"name"`
	Details   string        `json:"details,omitempty"`
	ImageURLs []string      `json:"image_urls"`
	Brand     string        `json:"brand,omitempty"`
	Condition ItemCondition `json:"condition"`
	Status    ItemStatus    `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
