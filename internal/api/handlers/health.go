package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/utils"
	"github.com/osa911/portfolio/internal/version"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check can probe, such as the redis store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is returned when every dependency answered
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type HealthHandler struct {
	deps map[string]Pinger
}

func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			utils.HandleAPIError(c, err, http.StatusServiceUnavailable, common.ErrCodeInternalServer, name+" is unavailable")
			return
		}
	}

	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: version.GetVersionString()})
}
