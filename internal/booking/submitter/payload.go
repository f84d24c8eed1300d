package submitter

import (
	"time"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/platform/phone"
	"booking_portal_backend/platform/sanitize"
)

// Request statuses understood by the marketplace API.
const (
	StatusDraft   = "draft"
	StatusPending = "pending"
)

// Input is everything needed to build one outbound request.
type Input struct {
	Form    domain.FormState
	Service domain.ServiceInfo
}

// Payload is the request body for create, update and draft save. Address is
// the composite display line; the structured parts travel alongside it so a
// draft reads back without guessing.
type Payload struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	SpecialtyNeeded string     `json:"specialty_needed"`
	Address         string     `json:"address"`
	City            string     `json:"city,omitempty"`
	PostalCode      string     `json:"postal_code,omitempty"`
	Quartier        string     `json:"quartier,omitempty"`
	Commune         string     `json:"commune,omitempty"`
	PreferredDate   *time.Time `json:"preferred_date"`
	IsUrgent        bool       `json:"is_urgent"`
	Priority        string     `json:"priority"`
	EstimatedPrice  int64      `json:"estimated_price"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status,omitempty"`
	Photos          []string   `json:"photos,omitempty"`
}

// BuildPayload translates the form. status is left empty for plain creates.
// Free text is stripped of markup.
func BuildPayload(in Input, loc *time.Location, status string) Payload {
	f := in.Form
	p := Payload{
		Title:           in.Service.Name,
		Description:     sanitize.Text(f.Description),
		SpecialtyNeeded: f.ServiceID,
		Address:         domain.ComposeAddress(sanitize.Line(f.Address), sanitize.Line(f.City), sanitize.Line(f.PostalCode)),
		City:            sanitize.Line(f.City),
		PostalCode:      sanitize.Line(f.PostalCode),
		Quartier:        sanitize.Line(f.Quartier),
		Commune:         sanitize.Line(f.Commune),
		PreferredDate:   domain.PreferredDate(f.Date, f.Time, loc),
		IsUrgent:        f.IsUrgent,
		Priority:        domain.Priority(f.IsUrgent),
		EstimatedPrice:  domain.EstimatePrice(in.Service.BasePrice, f.IsUrgent),
		Phone:           phone.NormalizeE164(f.Phone),
		Status:          status,
	}
	if p.Title == "" {
		p.Title = f.ServiceID
	}
	if f.Coordinates != nil {
		lat, lng := f.Coordinates.Lat, f.Coordinates.Lng
		p.Latitude = &lat
		p.Longitude = &lng
	}
	if len(f.Photos) > 0 {
		p.Photos = domain.PhotoKeys(f.Photos)
	}
	return p
}
