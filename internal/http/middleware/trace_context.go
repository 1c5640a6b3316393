package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
)

// TraceContext attaches a request id (and the otel trace id when sampling is
// on) to the context and echoes the request id back to the client.
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		td := &ctxutil.TraceData{RequestID: requestID}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}
