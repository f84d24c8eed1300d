package wizard

import (
	"context"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/geolocation"
)

// SelectService picks the service on the first step, seeds the form from the
// draft (if any) and advances to EnterDetails.
func (w *Wizard) SelectService(ctx context.Context, serviceID string) error {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.s.Step != domain.StepSelectService {
		w.mu.Unlock()
		return ErrInvalidStep
	}
	w.mu.Unlock()

	info, err := w.deps.Catalog.LookupService(ctx, serviceID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.s.Step != domain.StepSelectService {
		w.mu.Unlock()
		return ErrInvalidStep
	}

	res := domain.Reconcile(w.s.Draft, info.ID)
	phone := w.s.Form.Phone
	w.s.Form = res.Form
	w.s.Form.Phone = phone
	w.s.Service = &info
	w.s.FieldErrors = nil
	w.s.Focus = ""
	w.s.FormErrors = nil
	w.s.Suggestions = nil
	w.s.SuggestionsOpen = false

	switch {
	case res.LocationRestored:
		c := res.Form.Coordinates
		w.gate.Grant(geolocation.Position{Lat: c.Lat, Lng: c.Lng}, geolocation.SourceDraft)
	case w.gate.Granted():
		// A device grant survives going back to change the service.
		if pos := w.gate.State().Position; pos != nil {
			w.s.Form.Coordinates = &domain.Coordinates{Lat: pos.Lat, Lng: pos.Lng}
		}
	}

	w.recomputePriceLocked()
	w.s.Step = domain.StepEnterDetails
	w.logEventLocked("service_selected")
	runLocator := w.enterDetailsLocked()
	keys := domain.PhotoKeys(w.s.Form.Photos)
	w.mu.Unlock()

	if len(keys) > 0 {
		w.refreshPreviews(ctx, keys)
	}
	if runLocator {
		_, _ = w.RequestLocation(ctx)
	}
	return nil
}

// enterDetailsLocked runs the location gate check on entering EnterDetails. It
// reports whether an in-process locator should be asked for a position.
func (w *Wizard) enterDetailsLocked() bool {
	if w.gate.Granted() {
		w.s.LocationPrompt = false
		return false
	}
	return w.promptLocationLocked()
}

func (w *Wizard) promptLocationLocked() bool {
	w.s.LocationPrompt = true
	if w.deps.Locator != nil {
		return true
	}
	// The platform reports back through CompleteLocation. A request that is
	// already in flight is left alone.
	_, _ = w.gate.Begin()
	return false
}

// Next advances one step. Leaving EnterDetails without a location grant
// re-opens the permission prompt, keeps the step and returns
// ErrLocationRequired.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}

	runLocator := false
	var result error

	switch w.s.Step {
	case domain.StepSelectService:
		if w.s.Service == nil {
			result = ErrServiceRequired
			break
		}
		w.s.Step = domain.StepEnterDetails
		w.logEventLocked("next")
		runLocator = w.enterDetailsLocked()
	case domain.StepEnterDetails:
		if !w.gate.Granted() {
			runLocator = w.promptLocationLocked()
			w.logEventLocked("location_required")
			result = ErrLocationRequired
			break
		}
		w.s.Step = domain.StepSchedule
		w.logEventLocked("next")
	default:
		result = ErrInvalidStep
	}
	w.mu.Unlock()

	if runLocator {
		_, _ = w.RequestLocation(ctx)
	}
	return result
}

// Back returns to the previous step. Re-entering EnterDetails does not ask for
// the location again when it is already granted.
func (w *Wizard) Back(ctx context.Context) error {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}

	prev, ok := w.s.Step.Previous()
	if !ok {
		w.mu.Unlock()
		return ErrInvalidStep
	}
	w.s.Step = prev
	w.s.Suggestions = nil
	w.s.SuggestionsOpen = false
	w.logEventLocked("back")

	runLocator := false
	if prev == domain.StepEnterDetails {
		runLocator = w.enterDetailsLocked()
	}
	w.mu.Unlock()

	if runLocator {
		_, _ = w.RequestLocation(ctx)
	}
	return nil
}

// Service returns the selected service, if any.
func (w *Wizard) Service() (domain.ServiceInfo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s.Service == nil {
		return domain.ServiceInfo{}, false
	}
	return *w.s.Service, true
}

// Step returns the current step.
func (w *Wizard) Step() domain.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.s.Step
}
