package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/session"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
)

// Logger logs each request once it has been handled. The level follows the
// response status. Request bodies are never logged since they carry patient
// data.
func Logger(log *logger.Logger) gin.HandlerFunc {
	zl := log.Zerolog()

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := zl.Info()
		msg := "Request processed"
		switch {
		case status >= 500:
			event = zl.Error()
			msg = "Server error"
		case status >= 400:
			event = zl.Warn()
			msg = "Client error"
		}

		event = event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent())
		if s, ok := session.FromContext(c.Request.Context()); ok {
			event = event.Str("user_id", s.UserID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg(msg)
	}
}
