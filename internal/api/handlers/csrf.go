package handlers

import (
	"net/http"

	"github.com/osa911/portfolio/internal/api/constants"
	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/service"
	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
)

// CSRFTokenResponse carries the token the page echoes in X-CSRF-Token.
type CSRFTokenResponse struct {
	Token string `json:"csrfToken"`
}

type CSRFHandler struct {
	csrfService service.CSRFService
	secure      bool
}

func NewCSRFHandler(csrfService service.CSRFService, secure bool) *CSRFHandler {
	return &CSRFHandler{csrfService: csrfService, secure: secure}
}

// Issue sets the CSRF cookie and returns the same token in the body.
func (h *CSRFHandler) Issue(c *gin.Context) {
	token, err := h.csrfService.GenerateToken()
	if err != nil {
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeInternalServer, "Failed to generate CSRF token")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.CookieCSRF, token, constants.CookieDuration24h, constants.CookiePathRoot, "", h.secure, false)
	c.JSON(http.StatusOK, CSRFTokenResponse{Token: token})
}
