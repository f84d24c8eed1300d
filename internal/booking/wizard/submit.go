package wizard

import (
	"context"
	"errors"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/platform/apperr"
)

// Result is a finished session.
type Result struct {
	RequestID string `json:"requestId,omitempty"`
	Redirect  string `json:"redirect"`
	FromDraft bool   `json:"fromDraft"`
}

// Submit validates the form and sends it. A session opened from a draft
// updates that draft; otherwise a new request is created. Validation failures
// set a field error and the focus and make no call.
func (w *Wizard) Submit(ctx context.Context) (Result, error) {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return Result{}, err
	}
	if w.s.Step != domain.StepSchedule {
		w.mu.Unlock()
		return Result{}, ErrInvalidStep
	}
	if w.s.Submitting {
		w.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	w.mu.Unlock()

	// The phone always comes from the profile, never from a stale copy.
	phone := w.loadPhone(ctx)

	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return Result{}, err
	}
	if phone != "" {
		w.s.Form.Phone = phone
	}
	if err := w.validateLocked(); err != nil {
		w.mu.Unlock()
		return Result{}, err
	}
	in, draftID := w.beginSendLocked()
	w.mu.Unlock()

	var (
		outcome submitter.Outcome
		err     error
	)
	if draftID != "" {
		outcome, err = w.deps.Submitter.UpdateFromDraft(ctx, draftID, in)
	} else {
		outcome, err = w.deps.Submitter.Create(ctx, in)
	}
	return w.finish(outcome, err, domain.StepSubmitted, draftID != "")
}

// SaveDraft stores the form as a new draft without validating it.
func (w *Wizard) SaveDraft(ctx context.Context) (Result, error) {
	w.mu.Lock()
	if err := w.checkEditableLocked(); err != nil {
		w.mu.Unlock()
		return Result{}, err
	}
	if w.s.Service == nil {
		w.mu.Unlock()
		return Result{}, ErrServiceRequired
	}
	if w.s.Submitting {
		w.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	in, _ := w.beginSendLocked()
	w.mu.Unlock()

	outcome, err := w.deps.Submitter.SaveDraft(ctx, in)
	return w.finish(outcome, err, domain.StepDraftSaved, false)
}

func (w *Wizard) validateLocked() error {
	err := domain.ValidateForSubmission(w.s.Form)
	if err == nil && !w.gate.Granted() {
		err = apperr.FieldValidation(domain.FieldLocation, domain.MsgLocationRequired)
	}
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		w.s.FieldErrors = map[string]string{appErr.Field: appErr.Message}
		w.s.Focus = domain.FocusFor(appErr.Field)
		if appErr.Field == domain.FieldLocation {
			w.s.LocationPrompt = true
		}
	}
	w.logEventLocked("validation_failed")
	return err
}

func (w *Wizard) beginSendLocked() (submitter.Input, string) {
	w.s.Submitting = true
	w.s.FormErrors = nil
	return submitter.Input{Form: w.s.Form.Clone(), Service: *w.s.Service}, w.s.DraftID
}

func (w *Wizard) finish(outcome submitter.Outcome, err error, terminal domain.Step, fromDraft bool) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.s.Submitting = false
	if w.s.Closed {
		return Result{}, nil
	}

	if err != nil {
		msgs := userMessages(err)
		w.s.FormErrors = msgs
		w.logEventLocked("send_failed")
		return Result{}, apperr.Wrap(apperr.KindUnavailable, msgs[0], err).WithDetails(msgs)
	}

	w.s.Step = terminal
	w.s.Redirect = outcome.Redirect
	w.s.RequestID = outcome.RequestID
	w.s.FieldErrors = nil
	w.s.Focus = ""
	w.s.FormErrors = nil
	w.s.Suggestions = nil
	w.s.SuggestionsOpen = false
	w.s.LocationPrompt = false
	w.logEventLocked(string(terminal))

	return Result{RequestID: outcome.RequestID, Redirect: outcome.Redirect, FromDraft: fromDraft}, nil
}
