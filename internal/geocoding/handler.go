package geocoding

import (
	"errors"
	"net/http"

	"booking_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the geocoding lookup endpoints.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Search handles GET /api/v1/geocoding/search?q=...
// Suggestions are best effort: a short query or a failed lookup yields an
// empty list.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.OK(c, []AddressSuggestion{})
		return
	}

	results, err := h.client.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.client.log.WithContext(c.Request.Context()).Warn("address suggestions unavailable", "error", err)
		results = []AddressSuggestion{}
	}

	httpkit.OK(c, results)
}

// Reverse handles GET /api/v1/geocoding/reverse?lat=...&lon=...
func (h *Handler) Reverse(c *gin.Context) {
	var req ReverseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "valid 'lat' and 'lon' are required", nil)
		return
	}

	result, err := h.client.Reverse(c.Request.Context(), *req.Lat, *req.Lon)
	if errors.Is(err, ErrAddressNotFound) {
		httpkit.Error(c, http.StatusNotFound, "address not found", nil)
		return
	}
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "address lookup service unavailable", nil)
		return
	}

	httpkit.OK(c, result)
}
