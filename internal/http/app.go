// Package http holds what the router needs from main: the modules to mount
// and the probes behind /api/ready.
package http

import (
	"context"

	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is one dependency probed by the readiness endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Module mounts one feature's routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what a module can mount on. Public is /api/v1 without
// authentication; Protected is the same prefix behind AuthRequired.
type RouterContext struct {
	Public    *gin.RouterGroup
	Protected *gin.RouterGroup
}

// App is assembled by main and handed to the router.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  []HealthChecker
	Modules []Module
}
