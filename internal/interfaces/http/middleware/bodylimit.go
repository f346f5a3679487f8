package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose body exceeds maxBytes. Import uploads
// are the only large requests the portal accepts, so the router wires a
// higher limit for those routes.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
