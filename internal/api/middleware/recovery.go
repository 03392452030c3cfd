package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/osa911/portfolio/internal/api/constants"
	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/logging"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic anywhere below it into a generic 500. The panic
// value and stack only go to the log.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("[PANIC] %s | %s | %s | %s | %s\n%s",
					c.Request.Method,
					c.Request.URL.Path,
					c.ClientIP(),
					c.GetString(constants.ContextKeyRequestID),
					fmt.Sprint(err),
					debug.Stack(),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.NewErrorResponse(
					common.ErrCodeInternalServer,
					"An unexpected error occurred. Please try again later.",
					nil,
				))
			}
		}()

		c.Next()
	}
}
