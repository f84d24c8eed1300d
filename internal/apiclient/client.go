// Package apiclient is the authenticated HTTP client for the marketplace API.
// The caller's bearer token is forwarded from the request context.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/httpkit"
	"booking_portal_backend/platform/logger"
)

const (
	upstreamName    = "marketplace_api"
	maxResponseSize = 1 << 20
)

// Response is the raw outcome of one call.
type Response struct {
	OK     bool
	Status int
	Body   []byte
}

// Decode unmarshals the body into out.
func (r Response) Decode(out interface{}) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Doer performs authenticated calls.
type Doer interface {
	Do(ctx context.Context, method, path string, body interface{}) (Response, error)
}

// Client is the marketplace API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a new API client.
func New(cfg config.APIConfig, log *logger.Logger) *Client {
	timeout := cfg.GetAPITimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Do sends body as JSON (when non-nil) to path. A non-2xx status is not an
// error; only transport failures are.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := httpkit.BearerToken(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).UpstreamError(upstreamName, method+" "+path, 0, err)
		return Response{}, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.log.WithContext(ctx).UpstreamError(upstreamName, method+" "+path, resp.StatusCode, err)
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		c.log.WithContext(ctx).UpstreamError(upstreamName, method+" "+path, resp.StatusCode, nil)
	}
	return Response{OK: ok, Status: resp.StatusCode, Body: data}, nil
}
