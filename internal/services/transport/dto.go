package transport

// ServiceResponse represents a bookable service in API responses.
type ServiceResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	BasePrice   int64   `json:"basePrice"`
	Currency    string  `json:"currency"`
}

// ServiceListResponse wraps the active catalog.
type ServiceListResponse struct {
	Items []ServiceResponse `json:"items"`
	Total int               `json:"total"`
}
