package v1

import (
	"context"
	"errors"
	"net/http"

	"go-portfolio-site/internal/delivery/http/middleware"
	"go-portfolio-site/internal/delivery/http/response"
	"go-portfolio-site/internal/domain"
	"go-portfolio-site/pkg/apperror"
	"go-portfolio-site/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	contactSuccessMessage  = "Message sent successfully! I'll get back to you soon."
	contactRejectedMessage = "Please fix the errors in the form"
	contactFailedMessage   = "There was an error sending your message. Please try again or contact me directly by email."
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
	pages     *PageHandler
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(r gin.IRoutes, contactUC domain.ContactUsecase, pages *PageHandler, limiter, bodyLimit gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
		pages:     pages,
	}

	r.POST("/contact", limiter, bodyLimit, handler.SubmitContact)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates the submission, emails the site owner and sends the sender an acknowledgment.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactSubmission  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      413      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /api/contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var sub domain.ContactSubmission
	if err := c.ShouldBind(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.PayloadTooLarge(middleware.MessageBodyTooLarge, err))
			return
		}
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	// A client disconnect must not cut a dispatch in half; the dispatcher bounds each relay call.
	ctx := context.WithoutCancel(c.Request.Context())

	outcome, err := h.contactUC.SubmitContact(ctx, sub)
	if err != nil {
		h.dispatchFailed(c, sub, outcome, err)
		return
	}

	if !outcome.State.Terminal() {
		c.Error(apperror.Internal(errors.New("contact submission stopped in state " + string(outcome.State))))
		return
	}

	switch outcome.State {
	case domain.StateRejected:
		h.rejected(c, sub, outcome.Validation)
	case domain.StateDelivered:
		h.delivered(c)
	default:
		c.Error(apperror.Internal(errors.New("contact submission failed without an error")))
	}
}

func (h *ContactHandler) rejected(c *gin.Context, sub domain.ContactSubmission, result domain.ValidationResult) {
	fields := make([]string, 0, len(result.Errors))
	for _, fe := range result.Errors {
		fields = append(fields, fe.Field)
	}
	security.DefaultLogger().LogValidationFailed(c.Request.Context(), sub.Email, c.ClientIP(), middleware.GetRequestID(c), fields)

	if response.WantsJSON(c) {
		response.Error(c, http.StatusUnprocessableEntity, contactRejectedMessage, result.Map())
		return
	}

	data := h.pages.page(sub, result.Map())
	data.Error = contactRejectedMessage
	h.pages.render(c, http.StatusUnprocessableEntity, data)
}

func (h *ContactHandler) delivered(c *gin.Context) {
	if response.WantsJSON(c) {
		response.Success(c, http.StatusOK, contactSuccessMessage, nil)
		return
	}

	data := h.pages.page(domain.ContactSubmission{}, nil)
	data.Success = contactSuccessMessage
	h.pages.render(c, http.StatusOK, data)
}

func (h *ContactHandler) dispatchFailed(c *gin.Context, sub domain.ContactSubmission, outcome *domain.ContactOutcome, err error) {
	appErr := apperror.New(http.StatusInternalServerError, contactFailedMessage, err)
	if errors.Is(err, domain.ErrRelayNotConfigured) {
		appErr = apperror.Unavailable(contactFailedMessage, err)
	}
	code := appErr.Code

	stage := "unknown"
	var dispatchErr *domain.DispatchError
	if errors.As(err, &dispatchErr) {
		stage = string(dispatchErr.Stage)
	}
	ownerNotified := outcome != nil && outcome.Report.OwnerNotified
	security.DefaultLogger().LogDispatchFailed(c.Request.Context(), sub.Email, c.ClientIP(), middleware.GetRequestID(c), stage, ownerNotified)

	// Attached for the error middleware to log; the response below is already generic.
	c.Error(appErr)

	if response.WantsJSON(c) {
		response.Error(c, code, contactFailedMessage, nil)
		return
	}

	data := h.pages.page(sub, nil)
	data.Error = contactFailedMessage
	h.pages.render(c, code, data)
}
