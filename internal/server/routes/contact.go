package routes

import (
	"github.com/osa911/portfolio/internal/api/handlers"
	"github.com/osa911/portfolio/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// SetupContactRoutes configures contact form routes
func SetupContactRoutes(router *gin.RouterGroup, contact *handlers.ContactHandler, m *Middleware) {
	public := router.Group("/contact")
	{
		public.GET("", contact.Status)

		if m.CSRF != nil {
			public.POST("", middleware.CSRFMiddleware(m.CSRF), contact.Submit)
		} else {
			public.POST("", contact.Submit)
		}
	}
}

// SetupCSRFRoutes configures the token endpoint used by the form page
func SetupCSRFRoutes(router *gin.RouterGroup, csrf *handlers.CSRFHandler) {
	router.GET("/csrf", csrf.Issue)
}
