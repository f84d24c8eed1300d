// Package services provides the bookable service catalog module.
package services

import (
	apphttp "booking_portal_backend/internal/http"
	"booking_portal_backend/internal/services/handler"
	"booking_portal_backend/internal/services/repository"
	"booking_portal_backend/internal/services/service"
	"booking_portal_backend/platform/logger"
)

// Module is the catalog module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the catalog module over a repository (YAML file or Postgres).
func NewModule(repo repository.Reader, log *logger.Logger) *Module {
	svc := service.New(repo, log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "services"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the catalog routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/services", m.handler.ListActive)
	ctx.Public.GET("/services/:id", m.handler.GetByID)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
