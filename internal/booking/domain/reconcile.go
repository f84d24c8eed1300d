package domain

// ReconcileResult is the seeded form plus what the location gate should do.
type ReconcileResult struct {
	Form FormState
	// LocationRestored is true when the draft carried usable coordinates, in
	// which case the gate is treated as granted.
	LocationRestored bool
}

// Reconcile builds the initial form for serviceID from an optional draft.
//
// Without a draft only the service is set. A draft for the same service is
// copied in full. A draft for a different service keeps location, schedule and
// urgency but drops the description and photos, which were specific to the
// old service. Coordinates are restored only when both parts are numeric.
// The phone is never taken from a draft.
func Reconcile(draft *BookingDraft, serviceID string) ReconcileResult {
	form := NewForm(serviceID)
	if draft == nil {
		return ReconcileResult{Form: form}
	}

	form.Address = draft.Address
	form.City = draft.City
	form.PostalCode = draft.PostalCode
	form.Quartier = draft.Quartier
	form.Commune = draft.Commune
	form.Date = draft.Date
	if draft.Time.Valid() {
		form.Time = draft.Time
	}
	form.IsUrgent = draft.IsUrgent

	if draft.ServiceID == serviceID {
		form.Description = draft.Description
		for _, p := range draft.Photos {
			form.Photos = append(form.Photos, p)
			form.PhotoPreviews = append(form.PhotoPreviews, p.Key)
		}
	}

	coords, ok := draft.Coordinates()
	if ok {
		form.Coordinates = coords
	}
	return ReconcileResult{Form: form, LocationRestored: ok}
}
