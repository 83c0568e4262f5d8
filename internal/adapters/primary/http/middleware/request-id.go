package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	headerRequestID  = "X-Request-ID"
	ContextRequestID = "request_id"
	ContextLogger    = "logger"

	maxRequestIDLen = 64
)

// RequestID accepts the caller's X-Request-ID when it is short and plain,
// otherwise mints one. The id is echoed back and bound to a request-scoped
// logger retrievable with Logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		c.Set(ContextRequestID, requestID)
		c.Set(ContextLogger, log.WithField("request_id", requestID))
		c.Header(headerRequestID, requestID)

		c.Next()
	}
}

// Logger returns the request-scoped entry, or a bare entry on the standard
// logger when RequestID did not run.
func Logger(c *gin.Context) *log.Entry {
	if v, ok := c.Get(ContextLogger); ok {
		if entry, ok := v.(*log.Entry); ok {
			return entry
		}
	}
	return log.NewEntry(log.StandardLogger())
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
