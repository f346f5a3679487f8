package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps otelgin and enriches each span with the request ID plus
// the authenticated user and company, once JWTAuth has run.
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)
	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if requestID := c.GetString(RequestIDContextKey); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if userID := GetJWTUserID(c); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}
		if companyID := GetJWTCompanyID(c); companyID != "" {
			span.SetAttributes(attribute.String("company_id", companyID))
		}

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}
