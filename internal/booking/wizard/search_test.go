package wizard

import (
	"context"
	"errors"
	"testing"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/geocoding"
)

func suggestion(name, lat, lon string) geocoding.AddressSuggestion {
	return geocoding.AddressSuggestion{DisplayName: name, Lat: lat, Lon: lon}
}

func grantedWizard(t *testing.T, h *harness) *Wizard {
	t.Helper()
	w := started(t, h, "")
	if err := w.SelectService(context.Background(), "plumber"); err != nil {
		t.Fatalf("select service: %v", err)
	}
	grant(t, w)
	return w
}

func TestShortQueryClearsSuggestions(t *testing.T) {
	h := newHarness()
	h.geocoder.results = []geocoding.AddressSuggestion{suggestion("Bamako", "12.6", "-8")}
	w := grantedWizard(t, h)

	if err := w.Search(context.Background(), "Bamako"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := w.View(); !v.SuggestionsOpen || len(v.Suggestions) != 1 {
		t.Fatalf("expected open list, got %+v", v.Suggestions)
	}

	if err := w.Search(context.Background(), "Ba"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := w.View(); v.SuggestionsOpen || len(v.Suggestions) != 0 {
		t.Fatalf("expected empty closed list, got open=%v %+v", v.SuggestionsOpen, v.Suggestions)
	}
	if len(h.geocoder.searches) != 1 {
		t.Fatalf("short query must not reach the geocoder, searches=%v", h.geocoder.searches)
	}
}

func TestStaleSearchResultsAreDiscarded(t *testing.T) {
	h := newHarness()
	w := grantedWizard(t, h)

	older, fire1, _ := w.BeginSearch("Badala")
	newer, fire2, _ := w.BeginSearch("Badalabougou")
	if !fire1 || !fire2 || newer <= older {
		t.Fatalf("unexpected tokens %d %d", older, newer)
	}

	if !w.ApplySuggestions(newer, []geocoding.AddressSuggestion{suggestion("new", "1", "2")}, nil) {
		t.Fatal("latest results should apply")
	}
	if w.ApplySuggestions(older, []geocoding.AddressSuggestion{suggestion("old", "3", "4")}, nil) {
		t.Fatal("superseded results must be discarded")
	}
	if got := w.View().Suggestions; len(got) != 1 || got[0].DisplayName != "new" {
		t.Fatalf("unexpected suggestions %+v", got)
	}
}

func TestSearchFailureYieldsEmptyList(t *testing.T) {
	h := newHarness()
	w := grantedWizard(t, h)

	token, _, _ := w.BeginSearch("Bamako")
	if !w.ApplySuggestions(token, nil, errors.New("timeout")) {
		t.Fatal("expected failure to apply")
	}
	if v := w.View(); v.SuggestionsOpen || len(v.Suggestions) != 0 {
		t.Fatalf("expected empty closed list, got %+v", v)
	}
}

func TestSearchGatedOnLocation(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")
	_ = w.SelectService(context.Background(), "plumber")

	if err := w.Search(context.Background(), "Bamako"); !errors.Is(err, ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}
}

func TestSelectSuggestionSetsCoordinates(t *testing.T) {
	h := newHarness()
	w := grantedWizard(t, h)

	token, _, _ := w.BeginSearch("Hamdallaye")
	w.ApplySuggestions(token, []geocoding.AddressSuggestion{suggestion("X", "12.34", "-5.67")}, nil)

	if err := w.SelectSuggestion(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := w.View()
	want := domain.Coordinates{Lat: 12.34, Lng: -5.67}
	if v.Form.Coordinates == nil || *v.Form.Coordinates != want {
		t.Fatalf("unexpected coordinates %+v", v.Form.Coordinates)
	}
	if v.SuggestionsOpen || len(v.Suggestions) != 0 {
		t.Fatal("expected list closed")
	}
	if v.Form.Address != "X" {
		t.Fatalf("unexpected address %q", v.Form.Address)
	}

	if w.ApplySuggestions(token, []geocoding.AddressSuggestion{suggestion("late", "0", "0")}, nil) {
		t.Fatal("a search started before the selection must not reopen the list")
	}
	if err := w.SelectSuggestion(3); !errors.Is(err, ErrSuggestionIndex) {
		t.Fatalf("expected ErrSuggestionIndex, got %v", err)
	}
}

func TestClosedWizardDropsLateSuggestions(t *testing.T) {
	h := newHarness()
	w := grantedWizard(t, h)

	token, _, _ := w.BeginSearch("Bamako")
	w.Close()
	if w.ApplySuggestions(token, []geocoding.AddressSuggestion{suggestion("late", "1", "1")}, nil) {
		t.Fatal("results after Close must be dropped")
	}
	if err := w.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
