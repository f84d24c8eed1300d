// Package geocoding wraps a Nominatim-compatible forward and reverse address
// lookup service.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// MinQueryLength is the shortest forward query that reaches the geocoder.
const MinQueryLength = 3

const (
	searchLimit    = 5
	requestTimeout = 5 * time.Second
	upstreamName   = "nominatim"
)

// ErrAddressNotFound is returned by Reverse when no address exists at a position.
var ErrAddressNotFound = errors.New("address not found")

// Client talks to the geocoder. It is safe for concurrent use.
type Client struct {
	baseURL      string
	userAgent    string
	countryCodes string
	http         *http.Client
	limiter      *rate.Limiter
	cache        Cache
	cacheTTL     time.Duration
	reverse      singleflight.Group
	log          *logger.Logger
}

// NewClient creates a geocoder client. cache may be nil.
func NewClient(cfg config.GeocodingConfig, cache Cache, log *logger.Logger) *Client {
	limit := rate.Inf
	if rps := cfg.GetGeocoderRatePerSecond(); rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.GetGeocoderBaseURL(), "/"),
		userAgent:    cfg.GetGeocoderUserAgent(),
		countryCodes: cfg.GetGeocoderCountryCodes(),
		http:         &http.Client{Timeout: requestTimeout},
		limiter:      rate.NewLimiter(limit, 1),
		cache:        cache,
		cacheTTL:     cfg.GetGeocoderCacheTTL(),
		log:          log,
	}
}

// Search returns ranked candidates for free text. Queries shorter than
// MinQueryLength return an empty list without contacting the geocoder.
func (c *Client) Search(ctx context.Context, query string) ([]AddressSuggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []AddressSuggestion{}, nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.GetSearch(ctx, query); ok {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(searchLimit))
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}

	var raw []nominatimResult
	if err := c.get(ctx, "search", params, &raw); err != nil {
		return nil, err
	}

	suggestions := make([]AddressSuggestion, 0, len(raw))
	for _, r := range raw {
		if r.Lat == "" || r.Lon == "" {
			continue
		}
		suggestions = append(suggestions, r.suggestion())
	}

	if c.cache != nil {
		c.cache.SetSearch(ctx, query, suggestions, c.cacheTTL)
	}
	return suggestions, nil
}

// Reverse returns the structured address at a position. Concurrent lookups of
// the same position share one upstream call.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (AddressSuggestion, error) {
	latStr := strconv.FormatFloat(lat, 'f', 6, 64)
	lonStr := strconv.FormatFloat(lon, 'f', 6, 64)

	v, err, _ := c.reverse.Do(latStr+","+lonStr, func() (interface{}, error) {
		params := url.Values{}
		params.Set("lat", latStr)
		params.Set("lon", lonStr)
		params.Set("format", "json")
		params.Set("addressdetails", "1")

		var raw nominatimResult
		if err := c.get(ctx, "reverse", params, &raw); err != nil {
			return AddressSuggestion{}, err
		}
		if raw.Error != "" {
			return AddressSuggestion{}, ErrAddressNotFound
		}
		return raw.suggestion(), nil
	})
	if err != nil {
		return AddressSuggestion{}, err
	}
	return v.(AddressSuggestion), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithContext(ctx).UpstreamError(upstreamName, endpoint, 0, err)
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.WithContext(ctx).UpstreamError(upstreamName, endpoint, resp.StatusCode, nil)
		return fmt.Errorf("geocoder %s: upstream status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.WithContext(ctx).UpstreamError(upstreamName, endpoint, resp.StatusCode, err)
		return fmt.Errorf("geocoder %s: decode: %w", endpoint, err)
	}
	return nil
}
