// Package events defines the booking domain events published on the platform bus.
package events

import (
	"booking_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// BookingSubmitted is published after a request was created, or a draft was
// completed, on the marketplace API.
type BookingSubmitted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	UserID    uuid.UUID `json:"userId"`
	RequestID string    `json:"requestId"`
	ServiceID string    `json:"serviceId"`
	FromDraft bool      `json:"fromDraft"`
}

func (e BookingSubmitted) EventName() string { return "booking.request.submitted" }

// BookingDraftSaved is published after the wizard persisted a draft request.
type BookingDraftSaved struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	UserID    uuid.UUID `json:"userId"`
	RequestID string    `json:"requestId"`
	ServiceID string    `json:"serviceId"`
}

func (e BookingDraftSaved) EventName() string { return "booking.draft.saved" }
