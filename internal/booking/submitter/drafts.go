package submitter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/platform/apperr"
)

// requestRecord is a repair request as returned by the marketplace API.
type requestRecord struct {
	ID              json.RawMessage  `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	SpecialtyNeeded string           `json:"specialty_needed"`
	Address         string           `json:"address"`
	City            string           `json:"city"`
	PostalCode      string           `json:"postal_code"`
	Quartier        string           `json:"quartier"`
	Commune         string           `json:"commune"`
	PreferredDate   *time.Time       `json:"preferred_date"`
	IsUrgent        bool             `json:"is_urgent"`
	Latitude        domain.FlexFloat `json:"latitude"`
	Longitude       domain.FlexFloat `json:"longitude"`
	Photos          []photoRef       `json:"photos"`
	Status          string           `json:"status"`
	CreatedAt       *time.Time       `json:"created_at"`
}

// photoRef accepts either a bare storage key or an object with a key.
type photoRef struct {
	Key string
}

func (p *photoRef) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.Key); err == nil {
		return nil
	}
	var obj struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	p.Key = obj.Key
	return nil
}

// DraftSummary is one entry of the caller's draft list.
type DraftSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ServiceID   string     `json:"serviceId"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// GetDraft fetches one draft by id.
func (s *Submitter) GetDraft(ctx context.Context, id string) (*domain.BookingDraft, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, requestsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "draft could not be loaded", err)
	}
	switch {
	case resp.Status == http.StatusNotFound:
		return nil, apperr.NotFound("draft not found")
	case resp.Status == http.StatusForbidden:
		return nil, apperr.Forbidden("draft belongs to another user")
	case !resp.OK:
		return nil, apperr.Unavailable("draft could not be loaded")
	}

	var rec requestRecord
	if err := resp.Decode(&rec); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "draft could not be loaded", err)
	}
	if rec.Status != "" && rec.Status != StatusDraft {
		return nil, apperr.Precondition("request is no longer a draft")
	}
	return s.toDraft(rec), nil
}

// ListDrafts returns the caller's requests that are still drafts.
func (s *Submitter) ListDrafts(ctx context.Context) ([]DraftSummary, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, requestsPath+"?status="+StatusDraft, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "drafts could not be loaded", err)
	}
	if !resp.OK {
		return nil, apperr.Unavailable("drafts could not be loaded")
	}

	records, err := decodeList(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "drafts could not be loaded", err)
	}

	out := make([]DraftSummary, 0, len(records))
	for _, rec := range records {
		if rec.Status != StatusDraft {
			continue
		}
		out = append(out, DraftSummary{
			ID:          rawID(rec.ID),
			Title:       rec.Title,
			ServiceID:   rec.SpecialtyNeeded,
			Description: rec.Description,
			Address:     rec.Address,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out, nil
}

// decodeList accepts a bare array or a paginated envelope.
func decodeList(body []byte) ([]requestRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []requestRecord
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}
	var env struct {
		Items   []requestRecord `json:"items"`
		Results []requestRecord `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.Items != nil {
		return env.Items, nil
	}
	return env.Results, nil
}

func (s *Submitter) toDraft(rec requestRecord) *domain.BookingDraft {
	d := &domain.BookingDraft{
		ID:          rawID(rec.ID),
		ServiceID:   rec.SpecialtyNeeded,
		Address:     rec.Address,
		City:        rec.City,
		PostalCode:  rec.PostalCode,
		Quartier:    rec.Quartier,
		Commune:     rec.Commune,
		Description: rec.Description,
		IsUrgent:    rec.IsUrgent,
		Latitude:    rec.Latitude.Value,
		Longitude:   rec.Longitude.Value,
	}

	if rec.City != "" || rec.PostalCode != "" || rec.Quartier != "" || rec.Commune != "" {
		d.Address = streetPart(rec.Address, rec.City, rec.PostalCode)
	} else {
		// Older records only carry the composite address.
		d.Address, d.City, d.PostalCode = splitAddress(rec.Address)
	}

	if rec.PreferredDate != nil {
		d.Date, d.Time = domain.SplitPreferredDate(*rec.PreferredDate, s.loc)
	}

	for _, p := range rec.Photos {
		if p.Key != "" {
			d.Photos = append(d.Photos, domain.Photo{Key: p.Key})
		}
	}
	return d
}

// streetPart strips the city and postal code that ComposeAddress appended.
func streetPart(composite, city, postal string) string {
	suffix := domain.ComposeAddress("", city, postal)
	switch {
	case suffix == "":
		return composite
	case composite == suffix:
		return ""
	case strings.HasSuffix(composite, ", "+suffix):
		return strings.TrimSuffix(composite, ", "+suffix)
	}
	return composite
}

func splitAddress(composite string) (address, city, postal string) {
	parts := strings.Split(composite, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		n := len(parts)
		return strings.Join(parts[:n-2], ", "), parts[n-2], parts[n-1]
	}
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
