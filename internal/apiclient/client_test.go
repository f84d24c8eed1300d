package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking_portal_backend/platform/httpkit"
	"booking_portal_backend/platform/logger"
)

type testConfig struct{ url string }

func (c testConfig) GetAPIBaseURL() string        { return c.url }
func (c testConfig) GetAPITimeout() time.Duration { return time.Second }

func TestDoForwardsBearerAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected authorization %q", got)
		}
		if r.Method != http.MethodPost || r.URL.Path != "/requests" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["title"] != "Plomberie" {
			t.Errorf("unexpected body %v err=%v", body, err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"req-1"}`))
	}))
	defer srv.Close()

	client := New(testConfig{url: srv.URL + "/"}, logger.Nop())
	ctx := httpkit.WithBearerToken(context.Background(), "tok-123")

	resp, err := client.Do(ctx, http.MethodPost, "/requests", map[string]string{"title": "Plomberie"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK || resp.Status != http.StatusCreated {
		t.Fatalf("unexpected response %+v", resp)
	}

	var out struct{ ID string }
	if err := resp.Decode(&out); err != nil || out.ID != "req-1" {
		t.Fatalf("unexpected decode %+v err=%v", out, err)
	}
}

func TestDoNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("no token expected without one in context")
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	}))
	defer srv.Close()

	resp, err := New(testConfig{url: srv.URL}, logger.Nop()).Do(context.Background(), http.MethodGet, "/requests/1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.OK || resp.Status != http.StatusBadRequest || string(resp.Body) != `{"detail":"nope"}` {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := New(testConfig{url: url}, logger.Nop()).Do(context.Background(), http.MethodGet, "/x", nil); err == nil {
		t.Fatal("expected error")
	}
}
