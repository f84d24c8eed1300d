package wizard

import (
	"context"
	"errors"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/geocoding"
	"booking_portal_backend/internal/geolocation"
)

// RequestLocation asks the in-process Locator for a position. Without a
// Locator it only opens the prompt, as BeginLocation does.
func (w *Wizard) RequestLocation(ctx context.Context) (geolocation.State, error) {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return w.gate.State(), err
	}
	w.s.LocationPrompt = true
	w.mu.Unlock()

	if w.deps.Locator == nil {
		_, err := w.gate.Begin()
		return w.gate.State(), ignoreRepeat(err)
	}

	state, err := w.gate.Request(ctx, w.deps.Locator)
	w.afterLocationOutcome(state)
	return state, ignoreRepeat(err)
}

// BeginLocation starts a platform request and returns the options the
// platform must use. A call while a request is pending, or after access was
// granted, changes nothing and returns the same options.
func (w *Wizard) BeginLocation() (geolocation.Options, error) {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return geolocation.Options{}, err
	}
	w.s.LocationPrompt = true
	w.mu.Unlock()

	opts, err := w.gate.Begin()
	return opts, ignoreRepeat(err)
}

// CompleteLocation applies a platform outcome. On success the grant hook sets
// the coordinates and reverse-geocodes them into the address fields.
func (w *Wizard) CompleteLocation(ctx context.Context, pos *geolocation.Position, perr error) (geolocation.State, error) {
	if w.Closed() {
		return w.gate.State(), nil
	}
	state, err := w.gate.Complete(ctx, pos, perr)
	if err != nil {
		return state, err
	}
	w.afterLocationOutcome(state)
	return state, nil
}

func (w *Wizard) afterLocationOutcome(state geolocation.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s.Closed {
		return
	}
	switch state.Status {
	case geolocation.StatusGranted:
		w.s.LocationPrompt = false
		w.logEventLocked("location_granted")
	case geolocation.StatusDenied:
		w.s.LocationPrompt = true
		w.logEventLocked("location_denied")
	}
}

// DismissLocationPrompt closes the prompt without changing the permission.
func (w *Wizard) DismissLocationPrompt() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.s.LocationPrompt = false
}

// ignoreRepeat drops the errors of a request that is not re-entrant: a second
// request while one is pending, or one after access was granted.
func ignoreRepeat(err error) error {
	if errors.Is(err, geolocation.ErrAlreadyGranted) || errors.Is(err, geolocation.ErrRequestInFlight) {
		return nil
	}
	return err
}

// onLocationGranted is the gate's grant hook.
func (w *Wizard) onLocationGranted(ctx context.Context, pos geolocation.Position) {
	coords := domain.Coordinates{Lat: pos.Lat, Lng: pos.Lng}

	w.mu.Lock()
	if w.s.Closed {
		w.mu.Unlock()
		return
	}
	w.s.Form.Coordinates = &coords
	w.s.LocationNotice = ""
	w.clearFieldErrorLocked(domain.FieldLocation)
	w.mu.Unlock()

	if w.deps.Geocoder == nil {
		return
	}
	result, err := w.deps.Geocoder.Reverse(ctx, pos.Lat, pos.Lng)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s.Closed || w.s.Form.Coordinates == nil || *w.s.Form.Coordinates != coords {
		return
	}
	if err != nil {
		if !errors.Is(err, geocoding.ErrAddressNotFound) {
			w.deps.Log.WithContext(ctx).Warn("reverse geocode failed", "session_id", w.s.ID, "error", err)
		}
		w.s.LocationNotice = MsgAddressNotFound
		return
	}
	applyAddress(&w.s.Form, result)
}

// applyAddress copies the structured address into the form. Empty components
// leave the existing value in place.
func applyAddress(form *domain.FormState, s geocoding.AddressSuggestion) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&form.Address, s.StreetOrName())
	set(&form.City, s.Address.Locality())
	set(&form.PostalCode, s.Address.Postcode)
	set(&form.Quartier, s.Address.Quartier())
	set(&form.Commune, s.Address.Commune())
}
