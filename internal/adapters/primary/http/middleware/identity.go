package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity headers are set by the gateway after authentication and are
// trusted as is.
const (
	HeaderUserID    = "User-ID"
	HeaderUserEmail = "User-Email"

	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// Identity copies the caller's identity headers into the request context.
// Anonymous requests pass through with an empty user id.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
			c.Set(ContextUserID, id)
		}
		if email := strings.TrimSpace(c.GetHeader(HeaderUserEmail)); email != "" {
			c.Set(ContextUserEmail, email)
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func UserEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmail)
}
