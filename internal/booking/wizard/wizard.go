// Package wizard is the booking wizard state machine:
// SelectService -> EnterDetails -> Schedule -> (Submitted | DraftSaved).
//
// Every external call (catalog, geocoder, API) is made without holding the
// wizard's lock, and results that arrive after Close are dropped.
package wizard

import (
	"context"
	"sync"
	"time"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/internal/geocoding"
	"booking_portal_backend/internal/geolocation"
	"booking_portal_backend/platform/logger"
)

// Catalog resolves services.
type Catalog interface {
	LookupService(ctx context.Context, id string) (domain.ServiceInfo, error)
}

// Geocoder performs forward and reverse address lookups.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocoding.AddressSuggestion, error)
	Reverse(ctx context.Context, lat, lon float64) (geocoding.AddressSuggestion, error)
}

// Submitter sends the form to the marketplace API.
type Submitter interface {
	Create(ctx context.Context, in submitter.Input) (submitter.Outcome, error)
	UpdateFromDraft(ctx context.Context, draftID string, in submitter.Input) (submitter.Outcome, error)
	SaveDraft(ctx context.Context, in submitter.Input) (submitter.Outcome, error)
}

// Profile reads the caller's phone.
type Profile interface {
	Phone(ctx context.Context) (string, error)
}

// Drafts loads a saved draft.
type Drafts interface {
	GetDraft(ctx context.Context, id string) (*domain.BookingDraft, error)
}

// Previewer issues preview URLs for stored photos.
type Previewer interface {
	Previews(ctx context.Context, keys []string) ([]string, error)
}

// Deps are the wizard's collaborators. Locator and Previewer are optional;
// without a Locator the device position is reported through BeginLocation and
// CompleteLocation.
type Deps struct {
	Catalog   Catalog
	Geocoder  Geocoder
	Submitter Submitter
	Profile   Profile
	Drafts    Drafts
	Previewer Previewer
	Locator   geolocation.Locator
	Log       *logger.Logger
}

// Snapshot is the persisted state of one wizard session.
type Snapshot struct {
	ID              string                        `json:"id"`
	UserID          string                        `json:"userId"`
	Step            domain.Step                   `json:"step"`
	Form            domain.FormState              `json:"form"`
	Service         *domain.ServiceInfo           `json:"service,omitempty"`
	EstimatedPrice  int64                         `json:"estimatedPrice"`
	DraftID         string                        `json:"draftId,omitempty"`
	Draft           *domain.BookingDraft          `json:"draft,omitempty"`
	Location        geolocation.State             `json:"location"`
	LocationPrompt  bool                          `json:"locationPrompt"`
	LocationNotice  string                        `json:"locationNotice,omitempty"`
	FieldErrors     map[string]string             `json:"fieldErrors,omitempty"`
	Focus           string                        `json:"focus,omitempty"`
	FormErrors      []string                      `json:"formErrors,omitempty"`
	Suggestions     []geocoding.AddressSuggestion `json:"suggestions,omitempty"`
	SuggestionsOpen bool                          `json:"suggestionsOpen"`
	SearchSeq       uint64                        `json:"searchSeq"`
	Submitting      bool                          `json:"submitting"`
	Redirect        string                        `json:"redirect,omitempty"`
	RequestID       string                        `json:"requestId,omitempty"`
	Closed          bool                          `json:"closed"`
	CreatedAt       time.Time                     `json:"createdAt"`
}

// Wizard is one booking session. It is safe for concurrent use.
type Wizard struct {
	mu   sync.Mutex
	s    Snapshot
	gate *geolocation.Gate
	deps Deps
}

// New starts a fresh session. draftID may be empty.
func New(deps Deps, id, userID, draftID string) *Wizard {
	return Restore(deps, Snapshot{
		ID:        id,
		UserID:    userID,
		Step:      domain.StepSelectService,
		Form:      domain.NewForm(""),
		DraftID:   draftID,
		CreatedAt: time.Now().UTC(),
	})
}

// Restore rebuilds a session from a snapshot.
func Restore(deps Deps, snap Snapshot) *Wizard {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if snap.Step == "" {
		snap.Step = domain.StepSelectService
	}
	w := &Wizard{
		s:    snap,
		gate: geolocation.Restore(snap.Location, geolocation.DefaultOptions()),
		deps: deps,
	}
	w.gate.OnGrant(w.onLocationGranted)
	return w
}

// ID returns the session id.
func (w *Wizard) ID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.s.ID
}

// Snapshot returns a deep copy of the session state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wizard) snapshotLocked() Snapshot {
	out := w.s
	out.Form = w.s.Form.Clone()
	out.Location = w.gate.State()
	if w.s.Service != nil {
		svc := *w.s.Service
		out.Service = &svc
	}
	if w.s.FieldErrors != nil {
		out.FieldErrors = make(map[string]string, len(w.s.FieldErrors))
		for k, v := range w.s.FieldErrors {
			out.FieldErrors[k] = v
		}
	}
	out.FormErrors = append([]string(nil), w.s.FormErrors...)
	out.Suggestions = append([]geocoding.AddressSuggestion(nil), w.s.Suggestions...)
	return out
}

// Start derives the phone from the profile and loads the draft, if any.
func (w *Wizard) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.s.Closed {
		w.mu.Unlock()
		return ErrClosed
	}
	draftID := w.s.DraftID
	w.mu.Unlock()

	phone := w.loadPhone(ctx)

	var draft *domain.BookingDraft
	if draftID != "" && w.deps.Drafts != nil {
		d, err := w.deps.Drafts.GetDraft(ctx, draftID)
		if err != nil {
			return err
		}
		draft = d
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s.Closed {
		return nil
	}
	if phone != "" {
		w.s.Form.Phone = phone
	}
	w.s.Draft = draft
	w.logEventLocked("started")
	return nil
}

func (w *Wizard) loadPhone(ctx context.Context) string {
	if w.deps.Profile == nil {
		return ""
	}
	phone, err := w.deps.Profile.Phone(ctx)
	if err != nil {
		w.deps.Log.WithContext(ctx).Warn("profile phone unavailable", "session_id", w.ID(), "error", err)
		return ""
	}
	return phone
}

// Close marks the session dead. Results arriving afterwards are discarded.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.s.Closed {
		w.s.Closed = true
		w.logEventLocked("closed")
	}
}

// Closed reports whether Close was called.
func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.s.Closed
}

func (w *Wizard) checkEditableLocked() error {
	if w.s.Closed {
		return ErrClosed
	}
	if w.s.Step.IsTerminal() {
		return ErrInvalidStep
	}
	return nil
}

func (w *Wizard) recomputePriceLocked() {
	if w.s.Service == nil {
		w.s.EstimatedPrice = 0
		return
	}
	w.s.EstimatedPrice = domain.EstimatePrice(w.s.Service.BasePrice, w.s.Form.IsUrgent)
}

func (w *Wizard) clearFieldErrorLocked(field string) {
	delete(w.s.FieldErrors, field)
	if w.s.Focus == field || w.s.Focus == domain.FocusFor(field) {
		w.s.Focus = ""
	}
}

func (w *Wizard) logEventLocked(event string) {
	w.deps.Log.WizardEvent(w.s.ID, event, string(w.s.Step))
}
