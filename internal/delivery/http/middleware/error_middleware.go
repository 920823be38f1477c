package middleware

import (
	"errors"
	"net/http"

	"go-portfolio-site/internal/delivery/http/response"
	"go-portfolio-site/pkg/apperror"
	"go-portfolio-site/pkg/logger"
	"go-portfolio-site/pkg/security"

	"github.com/gin-gonic/gin"
)

const genericErrorMessage = "A server error occurred. Please try again later."

// ErrorPageRenderer writes the HTML page shell for browser clients.
type ErrorPageRenderer func(c *gin.Context, code int, message string)

func ErrorHandler(renderPage ErrorPageRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		code, message := http.StatusInternalServerError, genericErrorMessage
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			code, message = appErr.Code, appErr.Message
		}

		// SECURITY: Never expose internal error details to clients.
		// The detail goes to the server log only.
		if code >= http.StatusInternalServerError {
			logger.Log.Error("request failed", "error", err, "status", code, "request_id", GetRequestID(c))
		}

		// Handlers that already rendered only attach the error for logging
		if c.Writer.Written() {
			return
		}

		writeError(c, renderPage, code, message)
	}
}

// Recovery turns panics into the generic server error response.
func Recovery(renderPage ErrorPageRenderer) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path, "request_id", GetRequestID(c))
		security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
			Event:     security.EventPanicRecovered,
			IP:        c.ClientIP(),
			RequestID: GetRequestID(c),
			Details:   map[string]interface{}{"path": c.Request.URL.Path},
		})

		writeError(c, renderPage, http.StatusInternalServerError, genericErrorMessage)
		c.Abort()
	})
}

func writeError(c *gin.Context, renderPage ErrorPageRenderer, code int, message string) {
	if renderPage == nil || response.WantsJSON(c) {
		response.Error(c, code, message, nil)
		return
	}
	renderPage(c, code, message)
}
