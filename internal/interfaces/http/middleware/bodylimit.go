package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/practice/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes. Declared oversize bodies are rejected
// up front; chunked bodies fail with *http.MaxBytesError once read past the cap.
// A non-positive limit disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodePayloadTooLarge,
					"Request body exceeds maximum allowed size", GetRequestID(c)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
