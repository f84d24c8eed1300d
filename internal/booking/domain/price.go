package domain

// UrgencySurcharge is added to the base price of urgent requests (XOF).
const UrgencySurcharge int64 = 5000

// EstimatePrice is informational only; the provider sets the real price.
func EstimatePrice(basePrice int64, urgent bool) int64 {
	if urgent {
		return basePrice + UrgencySurcharge
	}
	return basePrice
}

// Priority maps the urgency flag to the API's priority values.
func Priority(urgent bool) string {
	if urgent {
		return "urgent"
	}
	return "medium"
}

// ServiceInfo is what the wizard reads from the service catalog.
type ServiceInfo struct {
	ID        string
	Name      string
	BasePrice int64
}
