package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio/internal/ratelimit"
	"github.com/osa911/portfolio/internal/service"
	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
)

const genericErrorMessage = "An unexpected error occurred. Please try again later."

type ContactHandler struct {
	contactService *service.ContactService
	now            func() time.Time
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		now:            time.Now,
	}
}

// Submit handles POST /api/v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	res, err := h.contactService.Submit(c.Request.Context(), utils.GetRealIP(c), func(req *contact.ContactRequest) error {
		return c.ShouldBindJSON(req)
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	setRateLimitHeaders(c, res.RateLimit)
	utils.HandleSuccess(c, contact.ContactResponse{
		Success:   true,
		Message:   fmt.Sprintf("Thank you for your message! I'll get back to you within %s.", res.Dispatch.ETA),
		MessageID: res.Dispatch.MessageID,
		EmailID:   res.Dispatch.EmailID,
		ETA:       res.Dispatch.ETA,
	})
}

// Status handles GET /api/v1/contact
func (h *ContactHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, contact.StatusResponse{Status: "ok", Service: "contact"})
}

func (h *ContactHandler) handleError(c *gin.Context, err error) {
	var (
		rlErr    *service.RateLimitError
		valErr   *service.ValidationError
		provErr  *service.ProviderError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &rlErr):
		reset := rlErr.ResetTime.UTC()
		setRateLimitHeaders(c, ratelimit.Result{Limit: rlErr.Limit, ResetTime: reset})
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rlErr.RetryAfter(h.now()).Seconds()))))

		resp := common.NewErrorResponse(common.ErrCodeTooManyRequests,
			"Too many submissions. Please try again later.", nil)
		resp.ResetTime = &reset
		c.JSON(http.StatusTooManyRequests, resp)

	case errors.As(err, &tooLarge):
		utils.HandleAPIError(c, err, http.StatusRequestEntityTooLarge, common.ErrCodePayloadTooLarge,
			"Request body is too large")

	case errors.Is(err, service.ErrMalformedBody):
		utils.HandleAPIError(c, err, http.StatusBadRequest, common.ErrCodeValidation, "Invalid request body")

	case errors.As(err, &valErr):
		utils.HandleAPIErrorWithDetails(c, err, http.StatusBadRequest, common.ErrCodeValidation,
			"Please correct the highlighted fields", valErr.Fields)

	case errors.Is(err, service.ErrBotCheckFailed):
		utils.HandleAPIError(c, err, http.StatusForbidden, common.ErrCodeBotCheckFailed,
			"We could not verify your submission. Please try again.")

	case errors.Is(err, service.ErrConfiguration):
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeConfiguration,
			"Server configuration error. Please try again later.")

	case errors.As(err, &provErr):
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeEmailSendFailed,
			"Failed to send your message. Please try again later.")

	default:
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeInternalServer, genericErrorMessage)
	}
}

func setRateLimitHeaders(c *gin.Context, r ratelimit.Result) {
	if r.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(r.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(r.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(r.ResetTime.Unix(), 10))
}
