package routes

import (
	"github.com/osa911/portfolio/internal/api/handlers"
	"github.com/osa911/portfolio/internal/api/middleware"
	"github.com/osa911/portfolio/internal/service"
)

// Handlers contains all the route handlers
type Handlers struct {
	Health  *handlers.HealthHandler
	Contact *handlers.ContactHandler
	// CSRF is nil when CSRF protection is disabled
	CSRF *handlers.CSRFHandler
}

// Middleware contains the middleware shared between route groups
type Middleware struct {
	Throttle *middleware.ClientThrottle
	// CSRF is nil when CSRF protection is disabled
	CSRF service.CSRFService
}
