package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleSuccess sends a 200 response with data as the body
func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
