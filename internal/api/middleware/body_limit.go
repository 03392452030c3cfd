package middleware

import (
	"fmt"
	"net/http"

	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies at maxBytes. Requests that declare a larger
// Content-Length are rejected up front; the rest are cut off while reading.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			utils.HandleAPIError(c,
				fmt.Errorf("content length %d exceeds %d", c.Request.ContentLength, maxBytes),
				http.StatusRequestEntityTooLarge,
				common.ErrCodePayloadTooLarge,
				"Request body is too large",
			)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
