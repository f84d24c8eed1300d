package submitter

import (
	"context"
	"net/http"

	"booking_portal_backend/platform/apperr"
)

const profilePath = "/users/me"

// Phone reads the caller's phone number from their profile. A profile without
// a phone yields an empty string.
func (s *Submitter) Phone(ctx context.Context) (string, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, profilePath, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "profile could not be loaded", err)
	}
	if !resp.OK {
		return "", apperr.Unavailable("profile could not be loaded")
	}

	var profile struct {
		Phone   string `json:"phone"`
		Profile struct {
			Phone string `json:"phone"`
		} `json:"profile"`
	}
	if err := resp.Decode(&profile); err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "profile could not be loaded", err)
	}
	if profile.Phone != "" {
		return profile.Phone, nil
	}
	return profile.Profile.Phone, nil
}
