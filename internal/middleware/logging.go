package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// Logging tags each request with an id and logs method, path, status and latency once it completes.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		log.Printf("%s %s %s %d %s", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Truncate(time.Microsecond))
	}
}

// RequestID returns the id assigned by Logging, or "" outside a logged request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
