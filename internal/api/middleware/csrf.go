package middleware

import (
	"errors"
	"net/http"

	"github.com/osa911/portfolio/internal/api/constants"
	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/service"
	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
)

var errCSRFMismatch = errors.New("csrf cookie and header do not match")

// CSRFMiddleware checks CSRF token for unsafe methods
func CSRFMiddleware(csrfService service.CSRFService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		csrfCookie, err := c.Cookie(constants.CookieCSRF)
		csrfHeader := c.GetHeader(constants.HeaderCSRF)
		if err != nil || !csrfService.ValidateToken(csrfCookie, csrfHeader) {
			utils.HandleAPIError(c, errCSRFMismatch, http.StatusForbidden, common.ErrCodeForbidden, "CSRF token invalid or missing")
			c.Abort()
			return
		}
		c.Next()
	}
}
