package server

import (
	"github.com/osa911/portfolio/internal/api/handlers"
	"github.com/osa911/portfolio/internal/api/middleware"
	"github.com/osa911/portfolio/internal/service"

	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies are the long-lived components the server routes to.
type Dependencies struct {
	Contact  *service.ContactService
	Throttle *middleware.ClientThrottle
	// HealthChecks are probed by GET /health
	HealthChecks map[string]handlers.Pinger
	// Gatherer backs GET /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}
