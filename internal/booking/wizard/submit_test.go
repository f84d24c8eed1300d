package wizard

import (
	"context"
	"errors"
	"testing"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/platform/apperr"
)

func TestSubmitCreatesExactlyOnce(t *testing.T) {
	h := newHarness()
	w := readyToSubmit(t, h, "")

	res, err := w.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Redirect != "/requests" || res.RequestID != "req-1" || res.FromDraft {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(h.submitter.calls) != 1 || h.submitter.calls[0].kind != "create" {
		t.Fatalf("expected exactly one create, got %+v", h.submitter.calls)
	}
	if in := h.submitter.calls[0].in; in.Service.BasePrice != 15000 || in.Form.City != "Bamako" {
		t.Fatalf("unexpected input %+v", in)
	}

	v := w.View()
	if v.Step != domain.StepSubmitted || v.Redirect != "/requests" {
		t.Fatalf("unexpected final view step=%s redirect=%q", v.Step, v.Redirect)
	}
	if err := w.SetField(domain.FieldDescription, "late edit"); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("expected terminal session, got %v", err)
	}
}

func TestSubmitFromDraftUpdatesDraft(t *testing.T) {
	h := newHarness()
	w := readyToSubmit(t, h, "d-1")

	res, err := w.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.FromDraft || len(h.submitter.calls) != 1 || h.submitter.calls[0].kind != "update" || h.submitter.calls[0].draftID != "d-1" {
		t.Fatalf("expected one update of d-1, got %+v", h.submitter.calls)
	}
}

func TestSubmitValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, h *harness, w *Wizard)
		field  string
		focus  string
	}{
		{"bad phone", func(_ *testing.T, h *harness, w *Wizard) {
			w.deps.Profile = fakeProfile("+22312345")
		}, domain.FieldPhone, domain.FieldPhone},
		{"blank city", func(t *testing.T, _ *harness, w *Wizard) {
			if err := w.SetField(domain.FieldCity, " "); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}, domain.FieldCity, domain.FieldCity},
		{"blank description", func(t *testing.T, _ *harness, w *Wizard) {
			if err := w.SetField(domain.FieldDescription, ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}, domain.FieldDescription, domain.FieldDescription},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			w := readyToSubmit(t, h, "")
			tc.mutate(t, h, w)

			_, err := w.Submit(context.Background())
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation || appErr.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
			if len(h.submitter.calls) != 0 {
				t.Fatalf("expected no network call, got %d", len(h.submitter.calls))
			}
			v := w.View()
			if v.FieldErrors[tc.field] == "" || v.Focus != tc.focus || v.Step != domain.StepSchedule {
				t.Fatalf("unexpected view errors=%v focus=%q step=%s", v.FieldErrors, v.Focus, v.Step)
			}
		})
	}
}

func TestSubmitWithoutCoordinatesFocusesAddress(t *testing.T) {
	h := newHarness()
	w := readyToSubmit(t, h, "")
	w.mu.Lock()
	w.s.Form.Coordinates = nil
	w.mu.Unlock()

	if _, err := w.Submit(context.Background()); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	v := w.View()
	if v.FieldErrors[domain.FieldLocation] == "" || v.Focus != domain.FieldAddress {
		t.Fatalf("unexpected errors=%v focus=%q", v.FieldErrors, v.Focus)
	}
	if len(h.submitter.calls) != 0 {
		t.Fatal("expected no network call")
	}
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	h := newHarness()
	h.submitter.err = &submitter.Error{Status: 400, Messages: []string{"phone: Invalid number."}}
	w := readyToSubmit(t, h, "")

	_, err := w.Submit(context.Background())
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	v := w.View()
	if v.Step != domain.StepSchedule || v.Submitting {
		t.Fatalf("expected retryable state, got step=%s submitting=%v", v.Step, v.Submitting)
	}
	if len(v.FormErrors) != 1 || v.FormErrors[0] != "phone: Invalid number." {
		t.Fatalf("unexpected form errors %v", v.FormErrors)
	}
	if v.Form.Description != "Leaking sink" {
		t.Fatal("form should be preserved")
	}

	h.submitter.err = errors.New("connection reset")
	_, _ = w.Submit(context.Background())
	if got := w.View().FormErrors; len(got) != 1 || got[0] != GenericSubmitMessage {
		t.Fatalf("expected generic message, got %v", got)
	}
}

func TestSaveDraftSkipsValidation(t *testing.T) {
	h := newHarness()
	h.deps.Profile = fakeProfile("")
	w := started(t, h, "")
	_ = w.SelectService(context.Background(), "painter")

	res, err := w.SaveDraft(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.submitter.calls) != 1 || h.submitter.calls[0].kind != "draft" {
		t.Fatalf("expected one draft save, got %+v", h.submitter.calls)
	}
	if res.Redirect != "/requests" || w.Step() != domain.StepDraftSaved {
		t.Fatalf("unexpected result %+v step=%s", res, w.Step())
	}
}

func TestSaveDraftNeedsService(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")
	if _, err := w.SaveDraft(context.Background()); !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
}

func TestSubmitOnlyFromSchedule(t *testing.T) {
	h := newHarness()
	w := started(t, h, "")
	_ = w.SelectService(context.Background(), "plumber")
	if _, err := w.Submit(context.Background()); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
}

type closingSubmitter struct {
	fakeSubmitter
	w *Wizard
}

func (s *closingSubmitter) Create(ctx context.Context, in submitter.Input) (submitter.Outcome, error) {
	s.w.Close()
	return s.fakeSubmitter.Create(ctx, in)
}

func TestLateSubmitResultIsDropped(t *testing.T) {
	h := newHarness()
	cs := &closingSubmitter{}
	h.deps.Submitter = cs
	w := readyToSubmit(t, h, "")
	cs.w = w

	res, err := w.Submit(context.Background())
	if err != nil || res != (Result{}) {
		t.Fatalf("expected silent drop, got %+v err=%v", res, err)
	}
	if w.Step() != domain.StepSchedule {
		t.Fatalf("closed session must not advance, got %s", w.Step())
	}
}
