// Package service runs booking wizard sessions over the Redis session store.
// Each call restores the wizard from its snapshot, applies one action and
// writes the snapshot back.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"booking_portal_backend/internal/attachments"
	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/booking/session"
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/internal/booking/transport"
	"booking_portal_backend/internal/booking/wizard"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/internal/geolocation"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	sendLockTTL = 60 * time.Second
	// RetiredTTL is how long a finished session stays readable.
	RetiredTTL = 10 * time.Minute
)

// Photos stores and removes uploaded booking photos.
type Photos interface {
	Upload(ctx context.Context, sessionID string, existing int, files []attachments.File) ([]domain.Photo, []string, error)
	Remove(ctx context.Context, key string)
}

// DraftLister lists the caller's drafts.
type DraftLister interface {
	ListDrafts(ctx context.Context) ([]submitter.DraftSummary, error)
}

// Service exposes the wizard actions for one user at a time.
type Service struct {
	store  *session.Store
	deps   wizard.Deps
	photos Photos
	drafts DraftLister
	bus    events.Bus
	log    *logger.Logger
}

// New creates the booking service. photos may be nil when object storage is
// not configured; uploads then fail with KindUnavailable.
func New(store *session.Store, deps wizard.Deps, photos Photos, drafts DraftLister, bus events.Bus, log *logger.Logger) *Service {
	if deps.Log == nil {
		deps.Log = log
	}
	return &Service{store: store, deps: deps, photos: photos, drafts: drafts, bus: bus, log: log}
}

// Create opens a new session, optionally continuing a draft.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req transport.CreateSessionRequest) (wizard.View, error) {
	id := uuid.NewString()
	w := wizard.New(s.deps, id, userID.String(), strings.TrimSpace(req.DraftID))
	if err := w.Start(ctx); err != nil {
		return wizard.View{}, err
	}
	if err := s.store.Create(ctx, w.Snapshot()); err != nil {
		return wizard.View{}, err
	}
	s.log.WithContext(ctx).Info("booking session created", "session_id", id, "draft_id", req.DraftID)
	return w.View(), nil
}

// Get returns the current state of a session.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, id string) (wizard.View, error) {
	snap, err := s.store.Get(ctx, id, userID.String())
	if err != nil {
		return wizard.View{}, err
	}
	return wizard.Restore(s.deps, snap).View(), nil
}

// Delete abandons a session and removes the photos uploaded in it.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	snap, err := s.store.Get(ctx, id, userID.String())
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id, userID.String()); err != nil {
		return err
	}
	if !snap.Step.IsTerminal() {
		s.removeOwned(ctx, id, domain.PhotoKeys(snap.Form.Photos))
	}
	return nil
}

// apply restores the session, runs op and stores the result, even when op
// fails, so that field errors and focus survive.
func (s *Service) apply(ctx context.Context, userID uuid.UUID, id string, op func(w *wizard.Wizard) error) (wizard.View, error) {
	var view wizard.View
	_, err := s.store.Update(ctx, id, userID.String(), func(snap wizard.Snapshot) (wizard.Snapshot, error) {
		w := wizard.Restore(s.deps, snap)
		opErr := op(w)
		view = w.View()
		return w.Snapshot(), opErr
	})
	return view, err
}

// SelectService picks the service to book. Photos uploaded in this session
// that the new form no longer carries are removed from storage.
func (s *Service) SelectService(ctx context.Context, userID uuid.UUID, id string, req transport.SelectServiceRequest) (wizard.View, error) {
	var dropped []string
	view, err := s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		before := domain.PhotoKeys(w.Snapshot().Form.Photos)
		if err := w.SelectService(ctx, req.ServiceID); err != nil {
			dropped = nil
			return err
		}
		dropped = droppedKeys(before, domain.PhotoKeys(w.Snapshot().Form.Photos))
		return nil
	})
	if err != nil {
		return view, err
	}
	s.removeOwned(ctx, id, dropped)
	return view, nil
}

func droppedKeys(before, after []string) []string {
	kept := make(map[string]bool, len(after))
	for _, k := range after {
		kept[k] = true
	}
	var out []string
	for _, k := range before {
		if !kept[k] {
			out = append(out, k)
		}
	}
	return out
}

// removeOwned deletes the keys stored under this session's prefix. Keys of a
// resumed draft belong to the draft and are left alone.
func (s *Service) removeOwned(ctx context.Context, id string, keys []string) {
	if s.photos == nil {
		return
	}
	for _, key := range keys {
		if attachments.OwnedBy(id, key) {
			s.photos.Remove(context.WithoutCancel(ctx), key)
		}
	}
}

// Next advances one step.
func (s *Service) Next(ctx context.Context, userID uuid.UUID, id string) (wizard.View, error) {
	return s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		return w.Next(ctx)
	})
}

// Back goes back one step.
func (s *Service) Back(ctx context.Context, userID uuid.UUID, id string) (wizard.View, error) {
	return s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		return w.Back(ctx)
	})
}

// SetField updates one form field.
func (s *Service) SetField(ctx context.Context, userID uuid.UUID, id string, req transport.SetFieldRequest) (wizard.View, error) {
	return s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		return w.SetField(req.Field, req.Value)
	})
}

// BeginLocation marks a device position request as started and returns the
// options the client must use.
func (s *Service) BeginLocation(ctx context.Context, userID uuid.UUID, id string) (transport.LocationBeginResponse, error) {
	var opts geolocation.Options
	view, err := s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		o, err := w.BeginLocation()
		opts = o
		return err
	})
	if err != nil {
		return transport.LocationBeginResponse{}, err
	}
	return transport.LocationBeginResponse{Options: opts, Session: view}, nil
}

// CompleteLocation records the outcome of the device position request.
func (s *Service) CompleteLocation(ctx context.Context, userID uuid.UUID, id string, req transport.LocationResultRequest) (wizard.View, error) {
	var (
		pos  *geolocation.Position
		perr error
	)
	switch {
	case req.ErrorCode != 0:
		perr = &geolocation.PositionError{Code: geolocation.ErrorCode(req.ErrorCode), Message: req.Message}
	case req.Lat != nil && req.Lng != nil:
		pos = &geolocation.Position{Lat: *req.Lat, Lng: *req.Lng, Accuracy: req.Accuracy}
	default:
		return wizard.View{}, apperr.BadRequest("lat and lng are required without an error code")
	}

	return s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		_, err := w.CompleteLocation(ctx, pos, perr)
		return err
	})
}

// DismissLocationPrompt hides the permission prompt.
func (s *Service) DismissLocationPrompt(ctx context.Context, userID uuid.UUID, id string) (wizard.View, error) {
	return s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		w.DismissLocationPrompt()
		return nil
	})
}

// Search runs a forward address search. The geocoder is called between two
// session writes so a newer search started meanwhile wins.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, id string, req transport.SearchRequest) (wizard.View, error) {
	var (
		token uint64
		fire  bool
	)
	view, err := s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		t, f, err := w.BeginSearch(req.Query)
		token, fire = t, f
		return err
	})
	if err != nil || !fire {
		return view, err
	}

	results, searchErr := s.deps.Geocoder.Search(ctx, req.Query)
	return s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		w.ApplySuggestions(token, results, searchErr)
		return nil
	})
}

// SelectSuggestion applies one search suggestion to the address.
func (s *Service) SelectSuggestion(ctx context.Context, userID uuid.UUID, id string, req transport.SelectSuggestionRequest) (wizard.View, error) {
	return s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		return w.SelectSuggestion(*req.Index)
	})
}

// UploadPhotos stores files and attaches them to the form.
func (s *Service) UploadPhotos(ctx context.Context, userID uuid.UUID, id string, files []attachments.File) (wizard.View, error) {
	if s.photos == nil {
		return wizard.View{}, apperr.Unavailable("photo uploads are not available")
	}
	snap, err := s.store.Get(ctx, id, userID.String())
	if err != nil {
		return wizard.View{}, err
	}
	if snap.Service == nil {
		return wizard.View{}, wizard.ErrServiceRequired
	}

	photos, previews, err := s.photos.Upload(ctx, id, len(snap.Form.Photos), files)
	if err != nil {
		return wizard.View{}, err
	}

	view, err := s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		return w.AddPhotos(photos, previews)
	})
	if err != nil {
		for _, p := range photos {
			s.photos.Remove(context.WithoutCancel(ctx), p.Key)
		}
		return wizard.View{}, err
	}
	return view, nil
}

// RemovePhoto detaches photo index. Photos uploaded in this session are also
// deleted from storage.
func (s *Service) RemovePhoto(ctx context.Context, userID uuid.UUID, id string, index int) (wizard.View, error) {
	var removed domain.Photo
	view, err := s.apply(ctx, userID, id, func(w *wizard.Wizard) error {
		p, err := w.RemovePhoto(index)
		removed = p
		return err
	})
	if err != nil {
		return view, err
	}
	s.removeOwned(ctx, id, []string{removed.Key})
	return view, nil
}

// Submit validates and sends the form.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, id string) (transport.SubmitResponse, error) {
	return s.send(ctx, userID, id, func(w *wizard.Wizard) (wizard.Result, error) {
		return w.Submit(ctx)
	})
}

// SaveDraft stores the form as a draft without validating it.
func (s *Service) SaveDraft(ctx context.Context, userID uuid.UUID, id string) (transport.SubmitResponse, error) {
	return s.send(ctx, userID, id, func(w *wizard.Wizard) (wizard.Result, error) {
		return w.SaveDraft(ctx)
	})
}

// send holds the session's send lock around the network call so a request is
// never created twice, then stores the outcome.
func (s *Service) send(ctx context.Context, userID uuid.UUID, id string, op func(w *wizard.Wizard) (wizard.Result, error)) (transport.SubmitResponse, error) {
	unlock, err := s.store.Lock(ctx, id, sendLockTTL)
	if err != nil {
		if errors.Is(err, session.ErrLocked) {
			return transport.SubmitResponse{}, wizard.ErrSubmitInFlight
		}
		return transport.SubmitResponse{}, err
	}
	defer unlock()

	snap, err := s.store.Get(ctx, id, userID.String())
	if err != nil {
		return transport.SubmitResponse{}, err
	}

	w := wizard.Restore(s.deps, snap)
	result, opErr := op(w)
	if err := s.store.Save(ctx, w.Snapshot()); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.log.WithContext(ctx).Info("booking session deleted during send", "session_id", id)
		} else {
			s.log.WithContext(ctx).Error("booking session not saved after send", "session_id", id, "error", err)
		}
	}
	if opErr != nil {
		return transport.SubmitResponse{}, opErr
	}

	view := w.View()
	s.publish(ctx, userID, id, view, result)
	return transport.SubmitResponse{Result: result, Session: view}, nil
}

func (s *Service) publish(ctx context.Context, userID uuid.UUID, id string, view wizard.View, result wizard.Result) {
	if s.bus == nil {
		return
	}
	sessionID, _ := uuid.Parse(id)
	serviceID := ""
	if view.Service != nil {
		serviceID = view.Service.ID
	}

	switch view.Step {
	case domain.StepSubmitted:
		s.bus.Publish(ctx, events.BookingSubmitted{
			BaseEvent: events.NewBaseEvent(),
			SessionID: sessionID,
			UserID:    userID,
			RequestID: result.RequestID,
			ServiceID: serviceID,
			FromDraft: result.FromDraft,
		})
	case domain.StepDraftSaved:
		s.bus.Publish(ctx, events.BookingDraftSaved{
			BaseEvent: events.NewBaseEvent(),
			SessionID: sessionID,
			UserID:    userID,
			RequestID: result.RequestID,
			ServiceID: serviceID,
		})
	}
}

// ListDrafts returns the caller's saved drafts.
func (s *Service) ListDrafts(ctx context.Context) (transport.DraftListResponse, error) {
	items, err := s.drafts.ListDrafts(ctx)
	if err != nil {
		return transport.DraftListResponse{}, err
	}
	return transport.DraftListResponse{Items: items, Total: len(items)}, nil
}

// Retire shortens the lifetime of a finished session.
func (s *Service) Retire(ctx context.Context, sessionID uuid.UUID) error {
	return s.store.Retire(ctx, sessionID.String(), RetiredTTL)
}
