package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLogger tags every request with an id (taken from X-Request-Id when
// the caller sent one) and logs its start and completion.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, rid))
		c.Header(RequestIDHeader, rid)

		entry := log.WithFields(logrus.Fields{
			"area":       "http",
			"req_id":     rid,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remoteaddr": c.ClientIP(),
		})
		entry.Debug("started")
		start := time.Now()

		c.Next()

		entry = entry.WithFields(logrus.Fields{
			"statuscode": c.Writer.Status(),
			"bytes":      c.Writer.Size(),
			"since":      time.Since(start).String(),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("completed")
			return
		}
		entry.Info("completed")
	}
}
