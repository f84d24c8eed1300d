package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// BookingDraft is a previously saved, not yet submitted request as seen by the
// wizard. Latitude and Longitude are nil unless the stored value was numeric.
type BookingDraft struct {
	ID          string   `json:"id"`
	ServiceID   string   `json:"serviceId"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postalCode"`
	Quartier    string   `json:"quartier"`
	Commune     string   `json:"commune"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Time        TimeSlot `json:"time"`
	IsUrgent    bool     `json:"isUrgent"`
	Photos      []Photo  `json:"photos,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Coordinates returns the stored position when both parts are numeric.
func (d *BookingDraft) Coordinates() (*Coordinates, bool) {
	if d.Latitude == nil || d.Longitude == nil {
		return nil, false
	}
	lat, lng := *d.Latitude, *d.Longitude
	if !finite(lat) || !finite(lng) {
		return nil, false
	}
	return &Coordinates{Lat: lat, Lng: lng}, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FlexFloat decodes a JSON number or numeric string. Anything else, including
// null and blank strings, leaves it unset.
type FlexFloat struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	f.Value = nil
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil && finite(v) {
			f.Value = &v
		}
	}
	return nil
}
