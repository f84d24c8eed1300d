package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/internal/geocoding"
	"booking_portal_backend/internal/geolocation"
	"booking_portal_backend/platform/apperr"

	"github.com/google/go-cmp/cmp"
)

func started(t *testing.T, h *harness, draftID string) *Wizard {
	t.Helper()
	w := New(h.deps, "sess-1", "user-1", draftID)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return w
}

func grant(t *testing.T, w *Wizard) {
	t.Helper()
	if _, err := w.CompleteLocation(context.Background(), &geolocation.Position{Lat: 12.63, Lng: -8.0}, nil); err != nil {
		t.Fatalf("complete location: %v", err)
	}
}

// readyToSubmit walks a fresh session to the schedule step with a valid form.
func readyToSubmit(t *testing.T, h *harness, draftID string) *Wizard {
	t.Helper()
	ctx := context.Background()
	w := started(t, h, draftID)
	if err := w.SelectService(ctx, "plumber"); err != nil {
		t.Fatalf("select service: %v", err)
	}
	grant(t, w)
	if err := w.SetField(domain.FieldDescription, "Leaking sink"); err != nil {
		t.Fatalf("set description: %v", err)
	}
	if err := w.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	return w
}

func TestDraftSameServiceKeepsDescription(t *testing.T) {
	h := newHarness()
	w := started(t, h, "d-1")

	if err := w.SelectService(context.Background(), "plumber"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	form := w.Snapshot().Form
	if form.Description != "leak" || form.City != "Bamako" {
		t.Fatalf("unexpected form %+v", form)
	}
	if form.Phone != "+223 70 12 34 56" {
		t.Fatalf("expected phone from profile, got %q", form.Phone)
	}
}

func TestDraftDifferentServiceDropsDescription(t *testing.T) {
	h := newHarness()
	w := started(t, h, "d-1")

	if err := w.SelectService(context.Background(), "electrician"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	form := w.Snapshot().Form
	if form.Description != "" || form.City != "Bamako" || len(form.Photos) != 0 {
		t.Fatalf("unexpected form %+v", form)
	}
}

func TestDraftWithCoordinatesGrantsLocation(t *testing.T) {
	h := newHarness()
	lat, lng := 12.6, -8.0
	h.deps.Drafts = fakeDrafts{"d-2": {ID: "d-2", ServiceID: "plumber", Latitude: &lat, Longitude: &lng}}
	w := started(t, h, "d-2")

	if err := w.SelectService(context.Background(), "plumber"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := w.View()
	if !v.Location.Granted || v.Location.Source != geolocation.SourceDraft || v.Location.Prompt {
		t.Fatalf("expected silent grant from draft, got %+v", v.Location)
	}
	if err := w.Next(context.Background()); err != nil {
		t.Fatalf("expected to advance, got %v", err)
	}
}

func TestUnknownDraftFailsStart(t *testing.T) {
	h := newHarness()
	w := New(h.deps, "sess-1", "user-1", "missing")
	if err := w.Start(context.Background()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnteringDetailsPromptsForLocation(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")

	if err := w.SelectService(context.Background(), "plumber"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := w.View()
	if v.Step != domain.StepEnterDetails {
		t.Fatalf("expected enter details, got %s", v.Step)
	}
	if !v.Location.Prompt || v.Location.Status != geolocation.StatusRequesting || v.Location.Options == nil {
		t.Fatalf("expected an open prompt with options, got %+v", v.Location)
	}
	if len(v.DisabledFields) != 6 {
		t.Fatalf("expected phone and address fields disabled, got %v", v.DisabledFields)
	}
}

func TestNextWithoutGrantKeepsStep(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")
	ctx := context.Background()
	_ = w.SelectService(ctx, "plumber")

	if _, err := w.CompleteLocation(ctx, nil, &geolocation.PositionError{Code: geolocation.CodePermissionDenied}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.DismissLocationPrompt()

	if err := w.Next(ctx); !errors.Is(err, ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}
	v := w.View()
	if v.Step != domain.StepEnterDetails || !v.Location.Prompt {
		t.Fatalf("expected prompt re-opened on the same step, got step=%s prompt=%v", v.Step, v.Location.Prompt)
	}
	if v.Location.Status != geolocation.StatusRequesting {
		t.Fatalf("expected a retry to be started, got %s", v.Location.Status)
	}
}

func TestPermissionDeniedMessage(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")
	_ = w.SelectService(context.Background(), "plumber")

	state, err := w.CompleteLocation(context.Background(), nil, &geolocation.PositionError{Code: geolocation.CodePermissionDenied})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Reason != geolocation.MsgPermissionDenied {
		t.Fatalf("unexpected reason %q", state.Reason)
	}
	if w.View().Location.Granted {
		t.Fatal("location must not be granted")
	}
}

func TestGrantReverseGeocodesAddress(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")
	_ = w.SelectService(context.Background(), "plumber")
	grant(t, w)

	v := w.View()
	if !v.Location.Granted || v.Location.Prompt {
		t.Fatalf("unexpected location view %+v", v.Location)
	}
	want := domain.Coordinates{Lat: 12.63, Lng: -8.0}
	if v.Form.Coordinates == nil || *v.Form.Coordinates != want {
		t.Fatalf("unexpected coordinates %+v", v.Form.Coordinates)
	}
	if v.Form.Address != "Rue 12" || v.Form.City != "Bamako" || v.Form.Quartier != "Badalabougou" || v.Form.Commune != "Commune V" {
		t.Fatalf("unexpected address fields %+v", v.Form)
	}
	if len(v.DisabledFields) != 1 {
		t.Fatalf("expected only phone disabled, got %v", v.DisabledFields)
	}
}

func TestReverseGeocodeMissDegrades(t *testing.T) {
	h := newHarness()
	h.geocoder.revErr = geocoding.ErrAddressNotFound
	w := started(t, h, "")
	_ = w.SelectService(context.Background(), "plumber")
	grant(t, w)

	v := w.View()
	if v.Location.Notice != MsgAddressNotFound || v.Form.Coordinates == nil {
		t.Fatalf("expected notice with coordinates kept, got %+v", v.Location)
	}
}

func TestLocatorNotReRequestedWhenGranted(t *testing.T) {
	h := newHarness()
	loc := &countingLocator{pos: geolocation.Position{Lat: 12.6, Lng: -8}}
	h.deps.Locator = loc
	w := started(t, h, "")
	ctx := context.Background()

	if err := w.SelectService(ctx, "plumber"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.calls != 1 || !w.View().Location.Granted {
		t.Fatalf("expected one locator call and a grant, calls=%d", loc.calls)
	}

	_ = w.Next(ctx)
	_ = w.Back(ctx)
	if w.Step() != domain.StepEnterDetails {
		t.Fatalf("expected enter details, got %s", w.Step())
	}
	if loc.calls != 1 {
		t.Fatalf("expected no new request on re-entry, got %d calls", loc.calls)
	}
}

func TestLocatorDeniedThenRetry(t *testing.T) {
	h := newHarness()
	loc := &countingLocator{err: &geolocation.PositionError{Code: geolocation.CodeTimeout}}
	h.deps.Locator = loc
	w := started(t, h, "")
	ctx := context.Background()

	_ = w.SelectService(ctx, "plumber")
	if v := w.View(); v.Location.Reason != geolocation.MsgTimeout || !v.Location.Prompt {
		t.Fatalf("unexpected location %+v", v.Location)
	}

	loc.err = nil
	loc.pos = geolocation.Position{Lat: 1, Lng: 2}
	state, err := w.RequestLocation(ctx)
	if err != nil || state.Status != geolocation.StatusGranted {
		t.Fatalf("expected retry to grant, got %+v err=%v", state, err)
	}
}

func TestSetFieldRules(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")

	if err := w.SetField(domain.FieldDescription, "x"); !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}

	_ = w.SelectService(context.Background(), "plumber")
	if err := w.SetField(domain.FieldCity, "Bamako"); !errors.Is(err, ErrLocationRequired) {
		t.Fatalf("expected gated city input, got %v", err)
	}
	if err := w.SetField(domain.FieldPhone, "+22370000000"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected phone to be read-only, got %v", err)
	}

	if got := w.View().EstimatedPrice; got != 15000 {
		t.Fatalf("expected base price, got %d", got)
	}
	if err := w.SetField(domain.FieldIsUrgent, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.View().EstimatedPrice; got != 20000 {
		t.Fatalf("expected surcharge, got %d", got)
	}

	grant(t, w)
	if err := w.SetField(domain.FieldCity, "Kati"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPhotosThroughWizard(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")
	_ = w.SelectService(context.Background(), "plumber")

	if err := w.AddPhotos([]domain.Photo{{Key: "a"}, {Key: "b"}}, []string{"pa", "pb"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	removed, err := w.RemovePhoto(0)
	if err != nil || removed.Key != "a" {
		t.Fatalf("unexpected removal %+v err=%v", removed, err)
	}
	form := w.Snapshot().Form
	if len(form.Photos) != 1 || len(form.PhotoPreviews) != 1 || form.PhotoPreviews[0] != "pb" {
		t.Fatalf("unexpected photos %+v / %v", form.Photos, form.PhotoPreviews)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := newHarness()
	w := started(t, h, "d-1")
	_ = w.SelectService(context.Background(), "plumber")
	grant(t, w)
	_, _, _ = w.BeginSearch("Rue 12")

	raw, err := json.Marshal(w.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := Restore(h.deps, snap)
	if diff := cmp.Diff(w.View(), restored.View()); diff != "" {
		t.Fatalf("restored view differs (-orig +restored):\n%s", diff)
	}
	if restored.Snapshot().SearchSeq != 1 {
		t.Fatal("expected sequence token to survive persistence")
	}
}

func TestSubmitResultPath(t *testing.T) {
	if submitter.ResultsPath != "/requests" {
		t.Fatalf("unexpected results path %q", submitter.ResultsPath)
	}
}
