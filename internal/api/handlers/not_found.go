package handlers

import (
	"net/http"

	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
)

// NotFound answers unknown routes with the standard JSON error body
func NotFound(c *gin.Context) {
	utils.HandleAPIError(c, nil, http.StatusNotFound, common.ErrCodeNotFound, "Resource not found")
}
