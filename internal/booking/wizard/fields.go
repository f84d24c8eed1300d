package wizard

import (
	"context"
	"slices"

	"booking_portal_backend/internal/booking/domain"
)

// SetField updates one named form field. Address inputs are rejected while
// location access is not granted.
func (w *Wizard) SetField(name string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditableLocked(); err != nil {
		return err
	}
	if w.s.Service == nil {
		return ErrServiceRequired
	}
	if domain.IsLocationField(name) && !w.gate.Granted() {
		return ErrLocationRequired
	}

	if err := domain.SetField(&w.s.Form, name, value); err != nil {
		return fieldError(name, err)
	}

	w.clearFieldErrorLocked(name)
	if name == domain.FieldIsUrgent {
		w.recomputePriceLocked()
	}
	return nil
}

// AddPhotos appends stored photos and their previews.
func (w *Wizard) AddPhotos(photos []domain.Photo, previews []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditableLocked(); err != nil {
		return err
	}
	if w.s.Service == nil {
		return ErrServiceRequired
	}
	if err := domain.AppendPhotos(&w.s.Form, photos, previews); err != nil {
		return fieldError("photos", err)
	}
	return nil
}

// RemovePhoto detaches photo i and its preview.
func (w *Wizard) RemovePhoto(i int) (domain.Photo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkEditableLocked(); err != nil {
		return domain.Photo{}, err
	}
	removed, err := domain.RemovePhoto(&w.s.Form, i)
	if err != nil {
		return domain.Photo{}, fieldError("photos", err)
	}
	return removed, nil
}

// PhotoCount returns the number of attached photos.
func (w *Wizard) PhotoCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.s.Form.Photos)
}

// refreshPreviews replaces preview references of photos restored from a draft.
// Previews are applied only if the photo list did not change meanwhile.
func (w *Wizard) refreshPreviews(ctx context.Context, keys []string) {
	if w.deps.Previewer == nil {
		return
	}
	previews, err := w.deps.Previewer.Previews(ctx, keys)
	if err != nil {
		w.deps.Log.WithContext(ctx).Warn("photo previews unavailable", "session_id", w.ID(), "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s.Closed || !slices.Equal(keys, domain.PhotoKeys(w.s.Form.Photos)) || len(previews) != len(keys) {
		return
	}
	w.s.Form.PhotoPreviews = previews
}
