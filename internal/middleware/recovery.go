package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
)

// Recovery turns a handler panic into a 500 response.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	zl := log.Zerolog()

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				zl.Error().
					Interface("error", r).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("Request panic recovered")

				httputil.RespondWithError(c, apperrors.Internal(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}
