// Package domain holds the booking wizard's form state and the pure rules that
// operate on it: field coercion, photo bookkeeping, price estimation,
// submission validation and draft reconciliation.
package domain

// Step is a position in the booking wizard.
type Step string

const (
	StepSelectService Step = "select_service"
	StepEnterDetails  Step = "enter_details"
	StepSchedule      Step = "schedule"
	StepSubmitted     Step = "submitted"
	StepDraftSaved    Step = "draft_saved"
)

// IsTerminal reports whether the session is finished.
func (s Step) IsTerminal() bool {
	return s == StepSubmitted || s == StepDraftSaved
}

// Next returns the following editable step, or false at the last one.
func (s Step) Next() (Step, bool) {
	switch s {
	case StepSelectService:
		return StepEnterDetails, true
	case StepEnterDetails:
		return StepSchedule, true
	default:
		return s, false
	}
}

// Previous returns the preceding editable step, or false at the first one.
func (s Step) Previous() (Step, bool) {
	switch s {
	case StepEnterDetails:
		return StepSelectService, true
	case StepSchedule:
		return StepEnterDetails, true
	default:
		return s, false
	}
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Photo is an uploaded attachment referenced by its storage key.
type Photo struct {
	Key         string `json:"key"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// FormState is the single mutable record the wizard operates on.
// Photos and PhotoPreviews are index-aligned.
type FormState struct {
	ServiceID     string       `json:"serviceId"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	PostalCode    string       `json:"postalCode"`
	Quartier      string       `json:"quartier"`
	Commune       string       `json:"commune"`
	Description   string       `json:"description"`
	Date          string       `json:"date"`
	Time          TimeSlot     `json:"time"`
	IsUrgent      bool         `json:"isUrgent"`
	Phone         string       `json:"phone"`
	Photos        []Photo      `json:"photos"`
	PhotoPreviews []string     `json:"photoPreviews"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
}

// NewForm returns an empty form for serviceID.
func NewForm(serviceID string) FormState {
	return FormState{
		ServiceID:     serviceID,
		Photos:        []Photo{},
		PhotoPreviews: []string{},
	}
}

// HasCoordinates reports whether a position is set.
func (f *FormState) HasCoordinates() bool {
	return f.Coordinates != nil
}

// Clone returns a deep copy.
func (f FormState) Clone() FormState {
	out := f
	out.Photos = append([]Photo{}, f.Photos...)
	out.PhotoPreviews = append([]string{}, f.PhotoPreviews...)
	if f.Coordinates != nil {
		c := *f.Coordinates
		out.Coordinates = &c
	}
	return out
}
