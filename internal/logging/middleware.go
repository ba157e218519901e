package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// GinMiddleware tags every request with a request id, attaches a scoped
// logger to the request context and writes one access line per request.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		l := Logger().With().Str("request_id", reqID).Logger()
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), l))

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		if status >= 500 {
			ev = l.Error()
		} else if status >= 400 {
			ev = l.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
