package utils

import (
	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/logging"

	"github.com/gin-gonic/gin"
)

// HandleAPIError logs err with request context and writes a JSON error body.
// The internal error text never reaches the client.
func HandleAPIError(c *gin.Context, err error, status int, code common.ErrorCode, message string) {
	logger := logging.GetGlobalLogger()
	logger.LogHTTPError(
		c.Request.Method,
		c.Request.URL.Path,
		GetRealIP(c),
		status,
		message,
		err,
	)

	c.JSON(status, common.NewErrorResponse(code, message, nil))
}

// HandleAPIErrorWithDetails is HandleAPIError for client errors whose details
// are safe to return, such as per-field validation messages.
func HandleAPIErrorWithDetails(c *gin.Context, err error, status int, code common.ErrorCode, message string, details interface{}) {
	logger := logging.GetGlobalLogger()
	logger.LogHTTPError(c.Request.Method, c.Request.URL.Path, GetRealIP(c), status, message, err)

	c.JSON(status, common.NewErrorResponse(code, message, details))
}
