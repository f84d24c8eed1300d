// Package submitter sends finished or partial booking forms to the
// marketplace API and reads drafts and the caller's profile back from it.
package submitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"booking_portal_backend/internal/apiclient"
	"booking_portal_backend/platform/logger"
)

// ResultsPath is where the caller is sent after a successful call.
const ResultsPath = "/requests"

const requestsPath = "/requests"

// Outcome is a successful call.
type Outcome struct {
	RequestID string
	Redirect  string
}

// Submitter performs exactly one outbound call per invocation.
type Submitter struct {
	api apiclient.Doer
	loc *time.Location
	log *logger.Logger
}

// New creates a submitter. loc is the zone the preferred time is expressed in.
func New(api apiclient.Doer, loc *time.Location, log *logger.Logger) *Submitter {
	if loc == nil {
		loc = time.UTC
	}
	return &Submitter{api: api, loc: loc, log: log}
}

// Create posts a new request. The server defaults its status to pending.
func (s *Submitter) Create(ctx context.Context, in Input) (Outcome, error) {
	return s.send(ctx, http.MethodPost, requestsPath, BuildPayload(in, s.loc, ""))
}

// UpdateFromDraft patches an existing draft and moves it out of draft status.
func (s *Submitter) UpdateFromDraft(ctx context.Context, draftID string, in Input) (Outcome, error) {
	path := requestsPath + "/" + url.PathEscape(draftID)
	return s.send(ctx, http.MethodPatch, path, BuildPayload(in, s.loc, StatusPending))
}

// SaveDraft posts a new request in draft status. The form is not validated.
func (s *Submitter) SaveDraft(ctx context.Context, in Input) (Outcome, error) {
	return s.send(ctx, http.MethodPost, requestsPath, BuildPayload(in, s.loc, StatusDraft))
}

func (s *Submitter) send(ctx context.Context, method, path string, payload Payload) (Outcome, error) {
	resp, err := s.api.Do(ctx, method, path, payload)
	if err != nil {
		return Outcome{}, genericError(0, err)
	}
	if !resp.OK {
		parsed := ParseErrorBody(resp.Status, resp.Body)
		s.log.WithContext(ctx).Info("booking request rejected",
			"method", method, "status", resp.Status, "messages", parsed.Messages)
		return Outcome{}, parsed
	}

	return Outcome{RequestID: decodeID(resp.Body), Redirect: ResultsPath}, nil
}

func decodeID(body []byte) string {
	var created struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || len(created.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(created.ID, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(created.ID, &n); err == nil {
		return n.String()
	}
	return ""
}
