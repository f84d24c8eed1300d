package wizard

import (
	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/geocoding"
	"booking_portal_backend/internal/geolocation"
)

// LocationView describes the permission prompt.
type LocationView struct {
	Status  geolocation.Status   `json:"status"`
	Granted bool                 `json:"granted"`
	Reason  string               `json:"reason,omitempty"`
	Prompt  bool                 `json:"prompt"`
	Notice  string               `json:"notice,omitempty"`
	Source  geolocation.Source   `json:"source,omitempty"`
	Options *geolocation.Options `json:"options,omitempty"`
}

// View is what clients render.
type View struct {
	ID              string                        `json:"id"`
	Step            domain.Step                   `json:"step"`
	Form            domain.FormState              `json:"form"`
	Service         *domain.ServiceInfo           `json:"service,omitempty"`
	EstimatedPrice  int64                         `json:"estimatedPrice"`
	DraftID         string                        `json:"draftId,omitempty"`
	Location        LocationView                  `json:"location"`
	DisabledFields  []string                      `json:"disabledFields"`
	FieldErrors     map[string]string             `json:"fieldErrors,omitempty"`
	Focus           string                        `json:"focus,omitempty"`
	FormErrors      []string                      `json:"formErrors,omitempty"`
	Suggestions     []geocoding.AddressSuggestion `json:"suggestions"`
	SuggestionsOpen bool                          `json:"suggestionsOpen"`
	SearchSeq       uint64                        `json:"searchSeq"`
	Submitting      bool                          `json:"submitting"`
	Redirect        string                        `json:"redirect,omitempty"`
	RequestID       string                        `json:"requestId,omitempty"`
}

var gatedFields = []string{
	domain.FieldAddress,
	domain.FieldCity,
	domain.FieldPostalCode,
	domain.FieldQuartier,
	domain.FieldCommune,
}

// View renders the current state.
func (w *Wizard) View() View {
	w.mu.Lock()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	v := View{
		ID:              snap.ID,
		Step:            snap.Step,
		Form:            snap.Form,
		Service:         snap.Service,
		EstimatedPrice:  snap.EstimatedPrice,
		DraftID:         snap.DraftID,
		DisabledFields:  []string{domain.FieldPhone},
		FieldErrors:     snap.FieldErrors,
		Focus:           snap.Focus,
		FormErrors:      snap.FormErrors,
		Suggestions:     snap.Suggestions,
		SuggestionsOpen: snap.SuggestionsOpen,
		SearchSeq:       snap.SearchSeq,
		Submitting:      snap.Submitting,
		Redirect:        snap.Redirect,
		RequestID:       snap.RequestID,
		Location: LocationView{
			Status:  snap.Location.Status,
			Granted: snap.Location.Status == geolocation.StatusGranted,
			Reason:  snap.Location.Reason,
			Prompt:  snap.LocationPrompt,
			Notice:  snap.LocationNotice,
			Source:  snap.Location.Source,
		},
	}
	if v.Suggestions == nil {
		v.Suggestions = []geocoding.AddressSuggestion{}
	}
	if !v.Location.Granted {
		v.DisabledFields = append(v.DisabledFields, gatedFields...)
	}
	if snap.Location.Status == geolocation.StatusRequesting {
		opts := w.gate.Options()
		v.Location.Options = &opts
	}
	return v
}
