package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

type SizeLimitConfig struct {
	MaxBodySize int64
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{MaxBodySize: 1 << 20}
}

// SizeLimit rejects declared oversize bodies up front and caps the reader
// for bodies that lie about their length.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.MaxBodySize <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > config.MaxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.Response{
				Error: &httputil.Error{
					Code:    http.StatusRequestEntityTooLarge,
					Message: fmt.Sprintf("request body exceeds %d bytes", config.MaxBodySize),
				},
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		c.Next()
	}
}
