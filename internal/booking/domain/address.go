package domain

import "strings"

// ComposeAddress joins the non-blank address parts with ", ".
func ComposeAddress(address, city, postalCode string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{address, city, postalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
