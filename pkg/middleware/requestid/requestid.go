// Package requestid tags every API call with an identifier that follows it
// through the zap access log, export job logs and the X-Request-ID response
// header, so a browser report can be matched to server lines.
package requestid

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerKey  = "X-Request-ID"
	contextKey = "request_id"
	maxLength  = 128
)

// Middleware reuses the X-Request-ID sent by the frontend or mints a UUID.
// Blank and oversized values are replaced.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerKey))
		if id == "" || len(id) > maxLength {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Header(headerKey, id)
		c.Next()
	}
}

// Value is the current request's ID, or "" outside the middleware.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
