package wizard

import (
	"context"
	"strings"
	"unicode/utf8"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/geocoding"
)

// BeginSearch registers a new forward search and returns its sequence token.
// fire is false for queries shorter than geocoding.MinQueryLength, which clear
// and close the suggestion list instead.
func (w *Wizard) BeginSearch(query string) (token uint64, fire bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditableLocked(); err != nil {
		return 0, false, err
	}
	if !w.gate.Granted() {
		return 0, false, ErrLocationRequired
	}

	w.s.SearchSeq++
	if utf8.RuneCountInString(strings.TrimSpace(query)) < geocoding.MinQueryLength {
		w.s.Suggestions = nil
		w.s.SuggestionsOpen = false
		return w.s.SearchSeq, false, nil
	}
	return w.s.SearchSeq, true, nil
}

// ApplySuggestions stores the results of search token. Results of superseded
// searches, or arriving after Close, are discarded and false is returned.
// Search failures leave an empty, closed list.
func (w *Wizard) ApplySuggestions(token uint64, results []geocoding.AddressSuggestion, searchErr error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.s.Closed || token != w.s.SearchSeq {
		return false
	}
	if searchErr != nil {
		w.deps.Log.Warn("address search failed", "session_id", w.s.ID, "error", searchErr)
		results = nil
	}
	w.s.Suggestions = append([]geocoding.AddressSuggestion(nil), results...)
	w.s.SuggestionsOpen = len(w.s.Suggestions) > 0
	return true
}

// Search runs a forward search end to end.
func (w *Wizard) Search(ctx context.Context, query string) error {
	token, fire, err := w.BeginSearch(query)
	if err != nil || !fire {
		return err
	}
	results, searchErr := w.deps.Geocoder.Search(ctx, query)
	w.ApplySuggestions(token, results, searchErr)
	return nil
}

// SelectSuggestion copies suggestion i into the address fields and
// coordinates and closes the list.
func (w *Wizard) SelectSuggestion(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditableLocked(); err != nil {
		return err
	}
	if !w.gate.Granted() {
		return ErrLocationRequired
	}
	if i < 0 || i >= len(w.s.Suggestions) {
		return ErrSuggestionIndex
	}

	picked := w.s.Suggestions[i]
	lat, lon, ok := picked.Coordinates()
	if !ok {
		return ErrSuggestionIndex
	}

	w.s.Form.Address = picked.StreetOrName()
	w.s.Form.City = picked.Address.Locality()
	w.s.Form.PostalCode = picked.Address.Postcode
	if q := picked.Address.Quartier(); q != "" {
		w.s.Form.Quartier = q
	}
	if c := picked.Address.Commune(); c != "" {
		w.s.Form.Commune = c
	}
	w.s.Form.Coordinates = &domain.Coordinates{Lat: lat, Lng: lon}

	w.s.Suggestions = nil
	w.s.SuggestionsOpen = false
	// Any search still in flight is now stale.
	w.s.SearchSeq++
	w.s.LocationNotice = ""
	for _, f := range []string{domain.FieldAddress, domain.FieldCity, domain.FieldLocation} {
		w.clearFieldErrorLocked(f)
	}
	return nil
}
