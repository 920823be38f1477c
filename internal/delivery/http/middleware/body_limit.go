package middleware

import (
	"net/http"

	"go-portfolio-site/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// MessageBodyTooLarge is returned to clients whose body exceeds the BodyLimit cap.
const MessageBodyTooLarge = "Request body too large"

// BodyLimit caps how many bytes handlers may read from the request body.
// Reads past the cap fail with *http.MaxBytesError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.Error(apperror.PayloadTooLarge(MessageBodyTooLarge, nil))
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
