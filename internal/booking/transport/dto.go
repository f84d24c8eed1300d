package transport

import (
	"booking_portal_backend/internal/booking/submitter"
	"booking_portal_backend/internal/booking/wizard"
	"booking_portal_backend/internal/geolocation"
)

type CreateSessionRequest struct {
	DraftID string `json:"draftId" validate:"omitempty,max=64"`
}

type SelectServiceRequest struct {
	ServiceID string `json:"serviceId" validate:"required,max=64"`
}

// SetFieldRequest updates one form field. Value is a string for text fields
// and a bool for isUrgent.
type SetFieldRequest struct {
	Field string `json:"field" validate:"required,formfield"`
	Value any    `json:"value"`
}

// LocationResultRequest reports the outcome of a device position request:
// either a position or a platform error code (1 denied, 2 unavailable,
// 3 timeout, anything else a generic failure).
// A request without an error code must carry both coordinates.
type LocationResultRequest struct {
	Lat       *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng       *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Accuracy  float64  `json:"accuracy" validate:"gte=0"`
	ErrorCode int      `json:"errorCode" validate:"omitempty,gte=1"`
	Message   string   `json:"message" validate:"max=500"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

type SelectSuggestionRequest struct {
	Index *int `json:"index" validate:"required,gte=0"`
}

type LocationBeginResponse struct {
	Options geolocation.Options `json:"options"`
	Session wizard.View         `json:"session"`
}

type SubmitResponse struct {
	Result  wizard.Result `json:"result"`
	Session wizard.View   `json:"session"`
}

type DraftListResponse struct {
	Items []submitter.DraftSummary `json:"items"`
	Total int                      `json:"total"`
}
