package routes

import (
	"github.com/osa911/portfolio/internal/api/handlers"
	"github.com/osa911/portfolio/internal/api/middleware"
	"github.com/osa911/portfolio/internal/config"
	"github.com/osa911/portfolio/internal/logging"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Setup configures all route groups
func Setup(router *gin.Engine, h *Handlers, m *Middleware) {
	logger := logging.GetGlobalLogger()

	router.NoRoute(handlers.NotFound)

	SetupHealthRoutes(router, h.Health)

	// Create base API v1 group
	v1 := router.Group("/api/v1")

	SetupContactRoutes(v1, h.Contact, m)

	if h.CSRF != nil {
		SetupCSRFRoutes(v1, h.CSRF)
	}

	logger.Info("All routes have been set up successfully")
}

// SetupGlobalMiddleware configures middleware that applies to all routes.
// Recovery is first so a panic anywhere below it becomes a generic 500.
func SetupGlobalMiddleware(router *gin.Engine, cfg *config.Config, m *Middleware, logger *logging.Logger) {
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
	}))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if m.Throttle != nil {
		router.Use(m.Throttle.Middleware())
	}
}
