// Package booking provides the booking wizard module.
package booking

import (
	"context"

	"booking_portal_backend/internal/booking/handler"
	"booking_portal_backend/internal/booking/service"
	"booking_portal_backend/internal/booking/session"
	"booking_portal_backend/internal/booking/wizard"
	"booking_portal_backend/internal/events"
	apphttp "booking_portal_backend/internal/http"
	"booking_portal_backend/platform/logger"
	"booking_portal_backend/platform/validator"

	"github.com/google/uuid"
)

// Module is the booking module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the wizard service over the session store and subscribes
// to its own completion events to retire finished sessions.
func NewModule(store *session.Store, deps wizard.Deps, photos service.Photos, drafts service.DraftLister, bus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	svc := service.New(store, deps, photos, drafts, bus, log)

	retire := func(ctx context.Context, sessionID uuid.UUID) error {
		if err := svc.Retire(ctx, sessionID); err != nil {
			log.WithContext(ctx).Warn("finished booking session not retired", "session_id", sessionID, "error", err)
			return err
		}
		return nil
	}

	bus.Subscribe(events.BookingSubmitted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.BookingSubmitted)
		if !ok {
			return nil
		}
		log.Info("booking submitted", "session_id", e.SessionID, "request_id", e.RequestID, "service_id", e.ServiceID, "from_draft", e.FromDraft)
		return retire(ctx, e.SessionID)
	}))

	bus.Subscribe(events.BookingDraftSaved{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.BookingDraftSaved)
		if !ok {
			return nil
		}
		log.Info("booking draft saved", "session_id", e.SessionID, "request_id", e.RequestID, "service_id", e.ServiceID)
		return retire(ctx, e.SessionID)
	}))

	h, err := handler.New(svc, val)
	if err != nil {
		return nil, err
	}
	return &Module{
		handler: h,
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "booking"
}

// Service returns the booking service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the wizard routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/booking"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
