package geocoding

import (
	"strconv"
	"strings"
)

// SearchRequest represents the query parameters of a forward lookup. Short or
// missing queries are not an error; they have no suggestions.
type SearchRequest struct {
	Query string `form:"q"`
}

// ReverseRequest represents the query parameters of a reverse lookup.
type ReverseRequest struct {
	Lat *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lon *float64 `form:"lon" binding:"required,min=-180,max=180"`
}

// Address holds the structured components of a geocoder result.
type Address struct {
	Road          string `json:"road,omitempty"`
	HouseNumber   string `json:"house_number,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	CityDistrict  string `json:"city_district,omitempty"`
	City          string `json:"city,omitempty"`
	Town          string `json:"town,omitempty"`
	Village       string `json:"village,omitempty"`
	Municipality  string `json:"municipality,omitempty"`
	Hamlet        string `json:"hamlet,omitempty"`
	State         string `json:"state,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
	Country       string `json:"country,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
}

// AddressSuggestion is one geocoder candidate. Lat and Lon are kept as the
// strings the geocoder returns.
type AddressSuggestion struct {
	DisplayName string  `json:"displayName"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
}

// nominatimResult mirrors the relevant parts of the OSM search/reverse payload.
type nominatimResult struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
	Error       string  `json:"error"`
}

func (r nominatimResult) suggestion() AddressSuggestion {
	return AddressSuggestion{
		DisplayName: r.DisplayName,
		Lat:         r.Lat,
		Lon:         r.Lon,
		Address:     r.Address,
	}
}

// Locality picks the most specific settlement name available.
func (a Address) Locality() string {
	for _, v := range []string{a.City, a.Town, a.Village, a.Municipality, a.Hamlet} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Street returns the house number and road, or the road alone.
func (a Address) Street() string {
	return strings.TrimSpace(strings.Join([]string{a.HouseNumber, a.Road}, " "))
}

// Quartier is the neighbourhood-level name used for Malian addresses.
func (a Address) Quartier() string {
	if a.Neighbourhood != "" {
		return a.Neighbourhood
	}
	return a.Suburb
}

// Commune is the city district (Bamako is divided into communes).
func (a Address) Commune() string {
	return a.CityDistrict
}

// Coordinates parses Lat and Lon.
func (s AddressSuggestion) Coordinates() (lat, lon float64, ok bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(s.Lat), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(s.Lon), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// StreetOrName is the value placed in the free-text address field when a
// suggestion is picked.
func (s AddressSuggestion) StreetOrName() string {
	if street := s.Address.Street(); street != "" {
		return street
	}
	name, _, _ := strings.Cut(s.DisplayName, ",")
	return strings.TrimSpace(name)
}
