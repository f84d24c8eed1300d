package geocoding

import (
	apphttp "booking_portal_backend/internal/http"
)

// Module wires the geocoding HTTP routes.
type Module struct {
	handler *Handler
	client  *Client
}

func NewModule(client *Client) *Module {
	return &Module{handler: NewHandler(client), client: client}
}

func (m *Module) Name() string {
	return "geocoding"
}

// Client returns the shared geocoder client.
func (m *Module) Client() *Client {
	return m.client
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/geocoding")
	group.GET("/search", m.handler.Search)
	group.GET("/reverse", m.handler.Reverse)
}

var _ apphttp.Module = (*Module)(nil)
