package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDKey is the gin context key the trace ID is stored under.
	TraceIDKey = "trace_id"
	// TraceIDHeader carries the trace ID on the response (and may carry
	// one on the request, e.g. from a reverse proxy).
	TraceIDHeader = "X-Trace-ID"
)

// TraceID tags every request with a UUID and echoes it in the response
// header so a visitor's bug report can be matched to logs. An inbound
// header is honored only if it is itself a well-formed UUID; anything
// else is replaced, since the portal faces the open internet.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// GetTraceID returns the request's trace ID, or "" outside a traced
// request (e.g. in tests that call handlers directly).
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		return v.(string)
	}
	return ""
}
