// Package middleware holds the Gin middleware shared across the engine's
// HTTP surface: request correlation and structured access logging.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fantasyprojections/engine/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID stamps every request with a correlation id, reusing one the
// caller already supplied in X-Request-ID rather than always minting a
// fresh uuid, so a client-generated trace id survives the round trip.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// Logger emits one structured log line per request with latency, status,
// and the request id RequestID set, so access logs and correlation ids
// share a single middleware stack.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		requestID, _ := c.Get("request_id")
		log.Info("request processed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"error", c.Errors.String(),
		)
	}
}
